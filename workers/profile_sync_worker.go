// workers/profile_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tictactoe-arena/models"
	"tictactoe-arena/services"
)

// RemoteProfile matches one user in the profile service's change feed.
type RemoteProfile struct {
	ExternalID        string    `json:"external_id"`
	Username          string    `json:"username"`
	DisplayName       string    `json:"display_name"`
	ProfilePictureURL *string   `json:"profile_picture_url,omitempty"`
	AccountStatus     string    `json:"account_status"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// GetProfileChangesResponse is the top-level structure of the sync service response.
type GetProfileChangesResponse struct {
	Users []RemoteProfile `json:"users"`
}

// ProfileSink is where pulled profiles land.
type ProfileSink interface {
	UpsertProfile(ctx context.Context, account *models.Account) error
	LastProfileUpdate(ctx context.Context) time.Time
}

type ProfileSyncWorker struct {
	sink         ProfileSink
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewProfileSyncWorker(sink ProfileSink, syncServiceBaseURL, endpointPath, serviceToken string) *ProfileSyncWorker {
	return &ProfileSyncWorker{
		sink:         sink,
		interval:     1 * time.Minute,
		baseURL:      syncServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Profile Sync Worker (sync-service → accounts)…")
	go w.run(ctx)
}

func (w *ProfileSyncWorker) run(ctx context.Context) {
	if _, err := w.SyncOnce(ctx, time.Time{}); err != nil {
		log.Printf("[SYNC] ⚠️ Initial sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := w.SyncOnce(ctx, w.sink.LastProfileUpdate(ctx)); err != nil {
				log.Printf("[SYNC] ❌ Sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Profile Sync Worker stopped")
			return
		}
	}
}

// SyncOnce pulls every profile changed since `since` and upserts it. It
// returns how many rows were written.
func (w *ProfileSyncWorker) SyncOnce(ctx context.Context, since time.Time) (int, error) {
	base, err := url.Parse(w.baseURL)
	if err != nil {
		return 0, fmt.Errorf("invalid base sync service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request to sync service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("sync service non-200 response: %d: %s", resp.StatusCode, string(body))
	}

	var response GetProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("failed to decode sync service response: %w", err)
	}
	if len(response.Users) == 0 {
		return 0, nil
	}

	var upserted, failed int
	for _, remote := range response.Users {
		if remote.ExternalID == "" {
			continue
		}
		name := strings.TrimSpace(remote.DisplayName)
		if name == "" {
			name = remote.Username
		}
		acc := &models.Account{
			ID:          remote.ExternalID,
			Username:    services.Username(remote.ExternalID, remote.Username),
			DisplayName: name,
			AvatarURL:   remote.ProfilePictureURL,
		}
		if err := w.sink.UpsertProfile(ctx, acc); err != nil {
			failed++
			log.Printf("[SYNC] ⚠️ Failed to upsert account %q: %v", remote.ExternalID, err)
			continue
		}
		upserted++
	}

	log.Printf("[SYNC] ✅ Synced %d profile(s) (%d upserted, %d errors)", len(response.Users), upserted, failed)
	return upserted, nil
}
