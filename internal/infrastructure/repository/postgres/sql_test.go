package postgres

import "testing"

func TestChunkStrings(t *testing.T) {
	t.Parallel()

	ids := []string{"a", "b", "c", "d", "e"}

	chunks := chunkStrings(ids, 2)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[2]) != 1 || chunks[2][0] != "e" {
		t.Fatalf("unexpected tail chunk: %v", chunks[2])
	}

	if got := chunkStrings(nil, 2); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := chunkStrings(ids, 10); len(got) != 1 || len(got[0]) != 5 {
		t.Fatalf("expected single chunk for oversized limit, got %v", got)
	}
}

func TestEncodeParticipantsOmitsEmptySides(t *testing.T) {
	t.Parallel()

	row := tradeTableModel{
		ID:           "tr-1",
		Platform:     "sleeper",
		Status:       "pending",
		Participants: []byte(`[{"external_team_id":"1","players_received":["4046"]}]`),
	}

	item, err := row.toDomain()
	if err != nil {
		t.Fatalf("decode participants failed: %v", err)
	}
	if len(item.Participants) != 1 {
		t.Fatalf("expected one participant, got %d", len(item.Participants))
	}
	if item.Participants[0].ExternalTeamID != "1" {
		t.Fatalf("unexpected participant: %+v", item.Participants[0])
	}
	if len(item.Participants[0].PlayersGiven) != 0 {
		t.Fatalf("expected empty given side, got %v", item.Participants[0].PlayersGiven)
	}
}
