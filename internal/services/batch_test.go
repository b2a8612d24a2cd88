package services

import (
	"errors"
	"strings"
	"testing"
)

func TestBatchResult(t *testing.T) {
	r := NewBatchResult("vendor")
	if r.Err() != nil {
		t.Error("empty batch should have no error")
	}

	r.Succeed()
	r.Skip()
	r.Fail(7, errors.New("bad rating"))
	r.Fail(9, errStoreDown)

	if r.Succeeded != 1 || r.Skipped != 1 || r.Failed() != 2 {
		t.Errorf("counts = %d/%d/%d", r.Succeeded, r.Skipped, r.Failed())
	}

	err := r.Err()
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if !errors.Is(err, errStoreDown) {
		t.Error("aggregated error should wrap item errors")
	}
	if !strings.Contains(err.Error(), "vendor 7: bad rating") {
		t.Errorf("error text %q missing item id", err.Error())
	}
}
