package archive

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEntryBSONLayout(t *testing.T) {
	e := Entry{
		ID:            "0b0e7c1e-3d1f-4a57-9a43-3f6a7d1f3c55",
		Variant:       "algae",
		RiskScore:     55,
		RiskLevel:     "High",
		PrimaryAction: "Issue a public advisory.",
		CreatedAt:     time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
	}

	raw, err := bson.Marshal(e)
	if err != nil {
		t.Fatalf("bson.Marshal: %v", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("bson.Unmarshal: %v", err)
	}
	if doc["_id"] != e.ID {
		t.Errorf("expected id stored as _id, got %v", doc["_id"])
	}

	var back Entry
	if err := bson.Unmarshal(raw, &back); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if diff := cmp.Diff(e, back); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestListOptions(t *testing.T) {
	opts := listOptions(25)
	if opts.Limit == nil || *opts.Limit != 25 {
		t.Errorf("expected limit 25, got %v", opts.Limit)
	}
	if listOptions(0).Limit != nil {
		t.Error("expected no limit for zero")
	}
}
