package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/99minutos/shipment-tracker/internal/core/domain"
)

func TestHistoryOrderUsesSeq(t *testing.T) {
	if len(historyOldestFirst) != 1 || historyOldestFirst[0].Key != "seq" || historyOldestFirst[0].Value != 1 {
		t.Errorf("unexpected oldest-first sort %v", historyOldestFirst)
	}
	if len(historyNewestFirst) != 1 || historyNewestFirst[0].Key != "seq" || historyNewestFirst[0].Value != -1 {
		t.Errorf("unexpected newest-first sort %v", historyNewestFirst)
	}
}

func TestHistoryIndexes_UniqueSeqPerShipment(t *testing.T) {
	idx := historyIndexes()
	if len(idx) != 1 {
		t.Fatalf("expected one index, got %d", len(idx))
	}
	keys, ok := idx[0].Keys.(bson.D)
	if !ok || len(keys) != 2 || keys[0].Key != "shipment_id" || keys[1].Key != "seq" {
		t.Errorf("unexpected index keys %v", idx[0].Keys)
	}
	if idx[0].Options == nil || idx[0].Options.Unique == nil || !*idx[0].Options.Unique {
		t.Error("expected the index to be unique")
	}
}

func TestHistoryEvent_SeqIsStored(t *testing.T) {
	raw, err := bson.Marshal(domain.HistoryEvent{ID: "ev-1", ShipmentID: "shp-1", Seq: 4})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := bson.Raw(raw).Lookup("seq").Int64(); got != 4 {
		t.Errorf("expected seq 4, got %d", got)
	}
}

func TestStatusFilter_MatchesObservedStatus(t *testing.T) {
	f := statusFilter("shp-1", domain.StatusInTransit)
	if f["_id"] != "shp-1" || f["status"] != "IN_TRANSIT" {
		t.Errorf("unexpected filter %v", f)
	}
}
