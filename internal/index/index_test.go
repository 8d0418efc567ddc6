package index

import (
	"os"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "slack2md-index-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleDoc(path, channel, name string) DocRow {
	return DocRow{
		Path:      path,
		Channel:   channel,
		Name:      name,
		Checksum:  "cs-" + name,
		UpdatedAt: time.Now().UTC(),
	}
}

func TestUpsertDocument_AndChecksum(t *testing.T) {
	db := testDB(t)
	doc := sampleDoc("general/2019-10-31.md", "general", "2019-10-31")
	msgs := []MessageRow{
		{TS: "1572480000.000000", Day: "2019-10-31", Username: "alice", Text: "morning"},
	}
	if err := db.UpsertDocument(doc, msgs); err != nil {
		t.Fatalf("UpsertDocument: %v", err)
	}

	cs, err := db.GetChecksum("general/2019-10-31.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "cs-2019-10-31" {
		t.Errorf("checksum = %q", cs)
	}
}

func TestGetChecksum_UnknownPath(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nope.md")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "" {
		t.Errorf("checksum = %q, want empty", cs)
	}
}

func TestUpsertDocument_ReplacesMessages(t *testing.T) {
	db := testDB(t)
	doc := sampleDoc("general/day.md", "general", "day")

	first := []MessageRow{
		{TS: "1.0", Day: "1970-01-01", Username: "alice", Text: "old one"},
		{TS: "2.0", Day: "1970-01-01", Username: "alice", Text: "old two"},
	}
	if err := db.UpsertDocument(doc, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := []MessageRow{
		{TS: "3.0", Day: "1970-01-01", Username: "alice", Text: "replacement"},
	}
	if err := db.UpsertDocument(doc, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	channels, err := db.Channels()
	if err != nil {
		t.Fatalf("Channels: %v", err)
	}
	if len(channels) != 1 || channels[0].Messages != 1 {
		t.Errorf("channels = %+v, want 1 message after replace", channels)
	}

	if results, _ := db.Search("old", 10); len(results) != 0 {
		t.Errorf("stale messages still searchable: %+v", results)
	}
}

func TestChannels_Summary(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(sampleDoc("general/a.md", "general", "a"), []MessageRow{
		{TS: "1.0", Day: "1970-01-01", Username: "alice", Text: "x"},
		{TS: "2.0", Day: "1970-01-01", Username: "bob", Text: "y"},
	})
	_ = db.UpsertDocument(sampleDoc("random/b.md", "random", "b"), []MessageRow{
		{TS: "3.0", Day: "1970-01-01", Username: "alice", Text: "z"},
	})

	channels, err := db.Channels()
	if err != nil {
		t.Fatalf("Channels: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("len = %d, want 2", len(channels))
	}
	if channels[0].Name != "general" || channels[0].Documents != 1 || channels[0].Messages != 2 {
		t.Errorf("general = %+v", channels[0])
	}
}

func TestDocuments_NewestFirst(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(sampleDoc("general/2019-10-31.md", "general", "2019-10-31"), nil)
	_ = db.UpsertDocument(sampleDoc("general/2019-11-01.md", "general", "2019-11-01"), nil)

	docs, err := db.Documents("general")
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != 2 || docs[0] != "general/2019-11-01.md" || docs[1] != "general/2019-10-31.md" {
		t.Errorf("docs = %v", docs)
	}
}

func TestSearch_MatchesBody(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertDocument(sampleDoc("general/day.md", "general", "day"), []MessageRow{
		{TS: "1.0", Day: "1970-01-01", Username: "alice", Text: "deployment went fine"},
		{TS: "2.0", Day: "1970-01-01", Username: "bob", Text: "lunch plans"},
	})

	results, err := db.Search("deployment", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len = %d, want 1: %+v", len(results), results)
	}
	if results[0].Channel != "general" || results[0].Username != "alice" {
		t.Errorf("result = %+v", results[0])
	}
}

func TestSearch_NoMatches(t *testing.T) {
	db := testDB(t)
	results, err := db.Search("anything", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v", results)
	}
}
