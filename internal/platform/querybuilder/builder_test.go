package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "pin", "state").
		From("competitions").
		Where(Eq("pin", "123456")).
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, pin, state FROM competitions WHERE pin = $1 LIMIT 1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "123456" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderOrderBy(t *testing.T) {
	query, args, err := Select("id").
		From("teams").
		Where(Eq("competition_id", "c1")).
		OrderBy("created_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM teams WHERE competition_id = $1 ORDER BY created_at ASC, id ASC"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("teams").
		Columns("id", "name").
		Values("t1", "Alpha").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO teams (id, name) VALUES ($1, $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "t1" || args[1] != "Alpha" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("competitions").
		Set("state", "in_progress").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", "c1"), Eq("state", "registration")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE competitions SET state = $1, updated_at = NOW() WHERE id = $2 AND state = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "in_progress" || args[1] != "c1" || args[2] != "registration" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
