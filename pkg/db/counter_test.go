package db

import (
	"strings"
	"testing"
)

func TestCounterQueryShape(t *testing.T) {
	c := Counter{Table: "notes", IDColumn: "id", Column: "number_of_reads"}
	query := counterQuery(c)
	want := "UPDATE notes SET number_of_reads = number_of_reads + $1 WHERE id = $2 RETURNING number_of_reads"
	if strings.TrimSpace(query) != want {
		t.Fatalf("got %q", query)
	}
}
