/*
Package monitoring provides Prometheus metrics for the preview engine.

# Overview

Tracks HTTP traffic, render generations, bridge fetch traffic, overlay
mutations, and WebSocket connections.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record domain events
	metrics.RecordGeneration(result.Rewrites, result.Placeholder, elapsed)
	metrics.RecordBridgeRequest(200)

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
