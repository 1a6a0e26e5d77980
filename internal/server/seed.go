package server

import (
	"time"

	"go.uber.org/zap"

	"github.com/glasspane/preview/internal/logging"
	"github.com/glasspane/preview/internal/vfs"
)

const starterIndex = `<!DOCTYPE html>
<html>
<head>
  <title>New Project</title>
  <link rel="stylesheet" href="./style.css">
  <script src="./app.js"></script>
</head>
<body>
  <main>
    <h1>New Project</h1>
    <p>Edit the files to see the preview update.</p>
  </main>
</body>
</html>
`

const starterStyle = `body {
  font-family: sans-serif;
  margin: 0;
}

main {
  max-width: 640px;
  margin: 0 auto;
  padding: 2rem;
}
`

const starterScript = `fetch('./style.css').then(function (r) {
  console.log('stylesheet available:', r.ok);
});
`

// seedStarter populates an empty table with a minimal working project so the
// first generation renders something instead of the placeholder.
func seedStarter(table *vfs.Table, log *logging.Logger) {
	if table.Len() > 0 {
		return
	}
	table.Merge(map[string]string{
		"/index.html": starterIndex,
		"/style.css":  starterStyle,
		"/app.js":     starterScript,
	})
	if err := table.WriteMetadata(vfs.Metadata{
		Name:      "New Project",
		Template:  "starter",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		log.Warn("metadata seed failed", zap.Error(err))
	}
	log.Info("seeded starter project", zap.Int("files", table.Len()))
}
