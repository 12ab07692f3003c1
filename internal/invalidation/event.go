// Package invalidation defines the event the media indexer publishes when it
// finishes a pass over the library, and the consumer that reacts to it.
package invalidation

import (
	"fmt"
	"strings"
	"time"
)

// Event announces that the library index changed. The facet index and the
// filtered point set are rebuilt wholesale in response; there is no
// incremental update.
type Event struct {
	Version int       `json:"version"`
	Op      string    `json:"op"` // "reindex"
	TS      time.Time `json:"ts"`
	Source  string    `json:"source,omitempty"`
	Files   int       `json:"files,omitempty"`
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return fmt.Errorf("version must be 1")
	}
	if strings.TrimSpace(e.Op) != "reindex" {
		return fmt.Errorf("op must be reindex")
	}
	if e.TS.IsZero() {
		return fmt.Errorf("ts is required")
	}
	if e.Files < 0 {
		return fmt.Errorf("files must be nonnegative")
	}
	return nil
}
