package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAdd_AssignsSequenceNumbersPerOwner(t *testing.T) {
	st := MustTempStore(t)
	for i, wantSeq := range []int{1, 2, 3} {
		seq, err := st.Add("list", []byte(fmt.Sprintf(`{"n":%d}`, i)))
		if err != nil {
			t.Fatalf("Add -> error %v", err)
		}
		if seq != wantSeq {
			t.Errorf("Add -> seq %d, want %d", seq, wantSeq)
		}
	}
	seq, err := st.Add("grid", []byte(`{}`))
	if err != nil {
		t.Fatalf("Add -> error %v", err)
	}
	if seq != 1 {
		t.Errorf("first Add for second owner -> seq %d, want 1", seq)
	}
}

func TestSnapshot_ReturnsLatest(t *testing.T) {
	st := MustTempStore(t)
	st.Add("list", []byte(`{"title":"v1"}`))
	st.Add("list", []byte(`{"title":"v2"}`))
	got, err := st.Snapshot("list")
	if err != nil {
		t.Fatalf("Snapshot -> error %v", err)
	}
	if string(got) != `{"title":"v2"}` {
		t.Errorf("Snapshot -> %s, want latest config", got)
	}
}

func TestSnapshot_UnknownOwner(t *testing.T) {
	st := MustTempStore(t)
	if _, err := st.Snapshot("nobody"); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Snapshot of unknown owner -> error %v, want ErrNoSnapshot", err)
	}
}

func TestNextSeq(t *testing.T) {
	st := MustTempStore(t)
	if seq, _ := st.NextSeq("list"); seq != 1 {
		t.Errorf("NextSeq of fresh owner -> %d, want 1", seq)
	}
	st.Add("list", []byte(`{}`))
	if seq, _ := st.NextSeq("list"); seq != 2 {
		t.Errorf("NextSeq after one Add -> %d, want 2", seq)
	}
}

func TestIterateHistory(t *testing.T) {
	st := MustTempStore(t)
	for _, cfg := range []string{`{"v":1}`, `{"v":2}`, `{"v":3}`} {
		st.Add("list", []byte(cfg))
	}
	var got []Record
	err := st.IterateHistory("list", 2, 4, func(r Record) { got = append(got, r) })
	if err != nil {
		t.Fatalf("IterateHistory -> error %v", err)
	}
	want := []Record{
		{Seq: 2, CfgJSON: []byte(`{"v":2}`)},
		{Seq: 3, CfgJSON: []byte(`{"v":3}`)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("history (-want +got):\n%s", diff)
	}
}

func TestIterateHistory_UnknownOwner(t *testing.T) {
	st := MustTempStore(t)
	err := st.IterateHistory("nobody", 0, 10, func(Record) {
		t.Errorf("callback called for unknown owner")
	})
	if err != nil {
		t.Errorf("IterateHistory of unknown owner -> error %v", err)
	}
}

func TestOwners(t *testing.T) {
	st := MustTempStore(t)
	st.Add("grid", []byte(`{}`))
	st.Add("list", []byte(`{}`))
	st.Add("list", []byte(`{}`))
	owners, err := st.Owners()
	if err != nil {
		t.Fatalf("Owners -> error %v", err)
	}
	// Bucket iteration order is key order.
	if diff := cmp.Diff([]string{"grid", "list"}, owners); diff != "" {
		t.Errorf("owners (-want +got):\n%s", diff)
	}
}
