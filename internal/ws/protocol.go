package ws

import (
	"github.com/glasspane/preview/internal/overlay"
)

// Message is one inbound client frame.
type Message struct {
	Type     string            `json:"type"`
	Path     string            `json:"path,omitempty"`
	Content  string            `json:"content,omitempty"`
	Files    map[string]string `json:"files,omitempty"`
	Fragment string            `json:"fragment,omitempty"`
	RegionID string            `json:"regionId,omitempty"`
	Rect     overlay.Rect      `json:"rect,omitempty"`
	Action   string            `json:"action,omitempty"`
	Align    string            `json:"align,omitempty"`
	Root     string            `json:"root,omitempty"`
}

// Inbound message types.
const (
	TypeWriteFile      = "write_file"
	TypeDeleteFile     = "delete_file"
	TypeMergeFiles     = "merge_files"
	TypeInsertFragment = "insert_fragment"
	TypeCommitEdit     = "commit_edit"
	TypeSelect         = "select"
	TypeClearSelection = "clear_selection"
	TypeFormat         = "format"
	TypeSetRoot        = "set_root"
	TypePing           = "ping"
)
