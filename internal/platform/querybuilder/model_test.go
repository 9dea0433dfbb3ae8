package querybuilder

import "testing"

func TestInsertModel(t *testing.T) {
	type row struct {
		ID       string `db:"id"`
		LeagueID string `db:"league_id"`
		Retries  int    `db:"retries"`
		NoTag    string
	}

	query, args, err := InsertModel("contention_events", row{ID: "ev1", LeagueID: "lg1", Retries: 2}, "")
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}

	wantQuery := "INSERT INTO contention_events (id, league_id, retries) VALUES ($1, $2, $3)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "ev1" || args[2] != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel_RejectsNonStruct(t *testing.T) {
	if _, _, err := InsertModel("t", 42, ""); err == nil {
		t.Fatalf("expected error for non-struct model")
	}
}

func TestUpdateBuilder_SetExprBindsArgs(t *testing.T) {
	query, args, err := Update("leagues").
		SetExpr("season", "CASE WHEN season = 0 THEN ? ELSE season END", 2025).
		Where(Eq("id", "lg1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update: %v", err)
	}

	wantQuery := "UPDATE leagues SET season = CASE WHEN season = 0 THEN $1 ELSE season END WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != 2025 || args[1] != "lg1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
