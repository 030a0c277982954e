package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dispatchd/dispatchd/pkg/models"
)

func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

// setupBackends returns both store implementations, migrated and ready.
func setupBackends(t *testing.T) map[string]Store {
	t.Helper()

	db, err := Open(tempDBPath(t))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate sqlite store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return map[string]Store{
		"sqlite": db,
		"memory": NewMemoryStore(),
	}
}

func sampleRequest(id string) *models.Request {
	return &models.Request{
		ID:          id,
		SubmitterID: "tester",
		Text:        "find a product",
		State:       models.RequestStateProcessing,
		SubmittedAt: time.Now().UTC(),
	}
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "store.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Dir(path)); os.IsNotExist(err) {
		t.Error("parent directories not created")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := Open(tempDBPath(t))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	for i := 0; i < 3; i++ {
		if err := db.Migrate(); err != nil {
			t.Fatalf("migrate pass %d: %v", i, err)
		}
	}
}

func TestRequestLifecycle(t *testing.T) {
	for name, s := range setupBackends(t) {
		t.Run(name, func(t *testing.T) {
			req := sampleRequest("req-1")
			if err := s.InsertRequest(req); err != nil {
				t.Fatalf("InsertRequest: %v", err)
			}

			got, err := s.GetRequest("req-1")
			if err != nil {
				t.Fatalf("GetRequest: %v", err)
			}
			if got == nil {
				t.Fatal("GetRequest returned nil for a stored request")
			}
			if got.Text != req.Text || got.State != models.RequestStateProcessing {
				t.Errorf("GetRequest = %+v, want %+v", got, req)
			}

			if err := s.UpdateRequestState("req-1", models.RequestStateCompleted); err != nil {
				t.Fatalf("UpdateRequestState: %v", err)
			}
			got, _ = s.GetRequest("req-1")
			if got.State != models.RequestStateCompleted {
				t.Errorf("State = %q after update, want completed", got.State)
			}

			n, err := s.CountRequestsByState(models.RequestStateCompleted)
			if err != nil {
				t.Fatalf("CountRequestsByState: %v", err)
			}
			if n != 1 {
				t.Errorf("completed count = %d, want 1", n)
			}
		})
	}
}

func TestGetRequest_Missing(t *testing.T) {
	for name, s := range setupBackends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := s.GetRequest("nope")
			if err != nil {
				t.Fatalf("GetRequest: %v", err)
			}
			if got != nil {
				t.Errorf("GetRequest = %+v, want nil", got)
			}

			if err := s.UpdateRequestState("nope", models.RequestStateCompleted); err == nil {
				t.Error("UpdateRequestState succeeded for a missing request")
			}
		})
	}
}

func TestRecentRequests_NewestFirst(t *testing.T) {
	for name, s := range setupBackends(t) {
		t.Run(name, func(t *testing.T) {
			base := time.Now().UTC()
			for i := 0; i < 5; i++ {
				req := sampleRequest(string(rune('a' + i)))
				req.SubmittedAt = base.Add(time.Duration(i) * time.Second)
				if err := s.InsertRequest(req); err != nil {
					t.Fatal(err)
				}
			}

			recent, err := s.RecentRequests(3)
			if err != nil {
				t.Fatalf("RecentRequests: %v", err)
			}
			if len(recent) != 3 {
				t.Fatalf("len = %d, want 3", len(recent))
			}
			if recent[0].ID != "e" || recent[2].ID != "c" {
				t.Errorf("order = [%s %s %s], want newest first", recent[0].ID, recent[1].ID, recent[2].ID)
			}
		})
	}
}

func TestResponses(t *testing.T) {
	for name, s := range setupBackends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.InsertRequest(sampleRequest("req-1")); err != nil {
				t.Fatal(err)
			}

			resp := &models.AgentResponse{
				ID:         "resp-1",
				RequestID:  "req-1",
				AgentID:    models.AgentProductSearch,
				Content:    "found it",
				Confidence: 0.91,
				Duration:   1500 * time.Millisecond,
				CreatedAt:  time.Now().UTC(),
			}
			if err := s.InsertResponse(resp); err != nil {
				t.Fatalf("InsertResponse: %v", err)
			}

			got, err := s.ListResponsesByRequest("req-1")
			if err != nil {
				t.Fatalf("ListResponsesByRequest: %v", err)
			}
			if len(got) != 1 {
				t.Fatalf("len = %d, want 1", len(got))
			}
			if got[0].Duration != resp.Duration {
				t.Errorf("Duration = %v, want %v", got[0].Duration, resp.Duration)
			}
			if got[0].Confidence != resp.Confidence {
				t.Errorf("Confidence = %v, want %v", got[0].Confidence, resp.Confidence)
			}

			n, _ := s.CountResponses()
			if n != 1 {
				t.Errorf("CountResponses = %d, want 1", n)
			}
		})
	}
}

func TestArtifacts(t *testing.T) {
	for name, s := range setupBackends(t) {
		t.Run(name, func(t *testing.T) {
			first := &models.LearningArtifact{
				ID:        "art-1",
				RequestID: "req-1",
				Kind:      "cycle_report",
				Summary:   "first",
				Payload:   `{"n":1}`,
				CreatedAt: time.Now().UTC(),
			}
			second := &models.LearningArtifact{
				ID:        "art-2",
				RequestID: "req-1",
				Kind:      "cycle_report",
				Summary:   "second",
				Payload:   `{"n":2}`,
				CreatedAt: time.Now().UTC().Add(time.Second),
			}
			if err := s.InsertArtifact(first); err != nil {
				t.Fatal(err)
			}
			if err := s.InsertArtifact(second); err != nil {
				t.Fatal(err)
			}

			latest, err := s.LatestArtifactByRequest("req-1")
			if err != nil {
				t.Fatalf("LatestArtifactByRequest: %v", err)
			}
			if latest == nil || latest.ID != "art-2" {
				t.Errorf("latest = %+v, want art-2", latest)
			}

			missing, err := s.LatestArtifactByRequest("other")
			if err != nil {
				t.Fatal(err)
			}
			if missing != nil {
				t.Errorf("latest for unknown request = %+v, want nil", missing)
			}
		})
	}
}
