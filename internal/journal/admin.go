package journal

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tailscale/tailsql/server/tailsql"
	"tailscale.com/tsweb"

	"github.com/banshee-data/endurance/internal/monitoring"
	"github.com/banshee-data/endurance/internal/security"
)

// AttachAdminRoutes mounts the tsweb debug index on mux with a live SQL
// console over the journal and an on-demand backup download.
func (j *Journal) AttachAdminRoutes(mux *http.ServeMux) error {
	debug := tsweb.Debugger(mux)

	tsql, err := tailsql.NewServer(tailsql.Options{
		RoutePrefix: "/debug/tailsql/",
	})
	if err != nil {
		return fmt.Errorf("failed to create tailsql server: %w", err)
	}
	tsql.SetDB("sqlite://"+j.path, j.DB, &tailsql.DBOptions{
		Label: "Endurance journal",
	})
	debug.Handle("tailsql/", "SQL live debugging", tsql.NewMux())
	debug.Handle("journal-backup", "Create and download a backup of the journal now", http.HandlerFunc(j.handleBackup))
	return nil
}

func (j *Journal) handleBackup(w http.ResponseWriter, r *http.Request) {
	dir, err := os.MkdirTemp("", "endurance-backup-")
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to create backup dir: %v", err), http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			monitoring.Logf("Failed to remove backup dir: %v", err)
		}
	}()

	name := backupName(j.path, time.Now())
	backupPath := filepath.Join(dir, name)
	if _, err := j.Exec("VACUUM INTO ?", backupPath); err != nil {
		http.Error(w, fmt.Sprintf("Failed to create backup: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, backupPath)
}

// backupName derives the download name from the journal file name.
func backupName(path string, at time.Time) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return fmt.Sprintf("%s-backup-%d.db", security.SanitizeFilename(base), at.Unix())
}
