package model

import (
	"encoding/json"
	"testing"
)

func TestParsePublishTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2020-05-01", "2020-05-01"},
		{"2020-05-01T10:30:00Z", "2020-05-01"},
		{"2020-05-01 10:30:00", "2020-05-01"},
		{"2020-05", "2020-05-01"},
		{"2020", "2020-01-01"},
		{" 2020-05-01 ", "2020-05-01"},
		{"", SentinelDate},
		{SentinelDate, SentinelDate},
		{"May 2020", SentinelDate},
	}

	for _, tt := range tests {
		got := ParsePublishTime(tt.in)
		if got.String() != tt.want {
			t.Errorf("ParsePublishTime(%q) = %s, want %s", tt.in, got, tt.want)
		}
		if got.Valid() != (tt.want != SentinelDate) {
			t.Errorf("ParsePublishTime(%q).Valid() = %v", tt.in, got.Valid())
		}
	}
}

func TestPublishTime_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"2021-03-04"`, "2021-03-04"},
		{`1588291200000`, "2020-05-01"},
		{`null`, SentinelDate},
		{`"0000-00-00"`, SentinelDate},
		{`"garbage"`, SentinelDate},
		{`true`, SentinelDate},
	}

	for _, tt := range tests {
		var p PublishTime
		if err := json.Unmarshal([]byte(tt.raw), &p); err != nil {
			t.Errorf("Unmarshal(%s) failed: %v", tt.raw, err)
			continue
		}
		if p.String() != tt.want {
			t.Errorf("Unmarshal(%s) = %s, want %s", tt.raw, p, tt.want)
		}
	}
}

func TestPublishTime_SentinelRoundTrip(t *testing.T) {
	doc := Document{DocID: 1, Title: "A", Abstract: []string{"a"}}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Document
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.PublishTime.Valid() || decoded.PublishTime.String() != SentinelDate {
		t.Errorf("expected sentinel after round trip, got %s", decoded.PublishTime)
	}

	known := ParsePublishTime("2019-12-31")
	data, _ = json.Marshal(known)
	if string(data) != `"2019-12-31"` {
		t.Errorf("unexpected encoding %s", data)
	}
}

func TestPublishTime_Before(t *testing.T) {
	unknown := PublishTime{}
	early := ParsePublishTime("2019-01-01")
	late := ParsePublishTime("2020-01-01")

	if !unknown.Before(early) || early.Before(unknown) {
		t.Error("expected unknown dates to sort first")
	}
	if unknown.Before(unknown) {
		t.Error("unknown dates must not be ordered among themselves")
	}
	if !early.Before(late) || late.Before(early) {
		t.Error("expected chronological order for known dates")
	}
}

func TestEvidenceKey_RoundTrip(t *testing.T) {
	keys := []EvidenceKey{
		{DocID: 0, Sentence: 0},
		{DocID: 1, Sentence: 23},
		{DocID: 12, Sentence: 3},
		{DocID: 218373, Sentence: 14},
	}

	seen := make(map[string]EvidenceKey)
	for _, k := range keys {
		id := k.String()
		if prev, dup := seen[id]; dup {
			t.Errorf("keys %+v and %+v render to the same id %q", prev, k, id)
		}
		seen[id] = k

		back, err := ParseEvidenceKey(id)
		if err != nil {
			t.Errorf("ParseEvidenceKey(%q) failed: %v", id, err)
			continue
		}
		if back != k {
			t.Errorf("round trip of %+v returned %+v", k, back)
		}
	}
}

func TestParseEvidenceKey_Invalid(t *testing.T) {
	for _, id := range []string{"", "12", "x_1", "1_x", "1_-1", "Claim", "author:7"} {
		if _, err := ParseEvidenceKey(id); err == nil {
			t.Errorf("ParseEvidenceKey(%q) should fail", id)
		}
	}
}

func TestPrediction_Confidence(t *testing.T) {
	tests := []struct {
		name string
		p    Prediction
		want float64
	}{
		{"support", Prediction{Label: LabelSupport, LabelProbs: []float64{0.1, 0.2, 0.7}}, 0.7},
		{"contradict", Prediction{Label: LabelContradict, LabelProbs: []float64{0.6, 0.3, 0.1}}, 0.6},
		{"no vector", Prediction{Label: LabelSupport}, 1},
	}
	for _, tt := range tests {
		if got := tt.p.Confidence(); got != tt.want {
			t.Errorf("%s: Confidence() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPrediction_SentenceConfidence(t *testing.T) {
	parallel := Prediction{Sentences: []int{4, 7}, SentenceProbs: []float64{0.9, 0.8}}
	if got := parallel.SentenceConfidence(1); got != 0.8 {
		t.Errorf("parallel probabilities: got %v", got)
	}

	byIndex := Prediction{Sentences: []int{2}, SentenceProbs: []float64{0.1, 0.2, 0.3, 0.4}}
	if got := byIndex.SentenceConfidence(0); got != 0.3 {
		t.Errorf("probabilities by abstract index: got %v", got)
	}

	none := Prediction{Sentences: []int{5}}
	if got := none.SentenceConfidence(0); got != 1 {
		t.Errorf("missing probabilities: got %v", got)
	}
	if got := none.SentenceConfidence(3); got != 0 {
		t.Errorf("out of range sentence: got %v", got)
	}
}
