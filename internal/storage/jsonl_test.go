package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"taikodata/internal/model"
)

func TestJsonlStoragePutSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshots.jsonl")
	sink := NewJsonlStorage(path)

	rows := []model.TokenSnapshot{
		{ChainID: 167000, Address: "0xa", Symbol: "WETH", Rank: 1, PriceUSD: 2000},
		{ChainID: 167000, Address: "0xb", Symbol: "USDC", Rank: 2, PriceUSD: 1},
	}
	if err := sink.PutSnapshots(context.Background(), rows); err != nil {
		t.Fatalf("PutSnapshots: %v", err)
	}
	if err := sink.PutSnapshots(context.Background(), rows[:1]); err != nil {
		t.Fatalf("PutSnapshots: %v", err)
	}
	if err := sink.PutSnapshots(context.Background(), nil); err != nil {
		t.Fatalf("PutSnapshots empty: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var got []model.TokenSnapshot
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var row model.TokenSnapshot
		if err := json.Unmarshal(scanner.Bytes(), &row); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		got = append(got, row)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(got))
	}
	if got[1].Symbol != "USDC" || got[2].Address != "0xa" {
		t.Fatalf("unexpected rows: %+v", got)
	}
}
