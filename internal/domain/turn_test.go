package domain

import "testing"

func TestTranscriptAppendOrder(t *testing.T) {
	tr := NewTranscript()

	tr.Append(SpeakerUser, "what's the weather")
	tr.Append(SpeakerAssistant, "Sunny all day.")
	tr.Append(SpeakerUser, "thanks")

	if tr.Len() != 3 {
		t.Fatalf("len = %d, want 3", tr.Len())
	}

	turns := tr.Turns()
	want := []struct {
		speaker Speaker
		text    string
	}{
		{SpeakerUser, "what's the weather"},
		{SpeakerAssistant, "Sunny all day."},
		{SpeakerUser, "thanks"},
	}
	for i, w := range want {
		if turns[i].Speaker != w.speaker || turns[i].Text != w.text {
			t.Errorf("turn %d = %+v, want {%s %q}", i, turns[i], w.speaker, w.text)
		}
		if turns[i].Timestamp.IsZero() {
			t.Errorf("turn %d has no timestamp", i)
		}
	}

	last, ok := tr.Last()
	if !ok || last.Text != "thanks" {
		t.Fatalf("last = (%+v, %v), want the newest turn", last, ok)
	}
}

func TestTranscriptTurnsReturnsCopy(t *testing.T) {
	tr := NewTranscript()
	tr.Append(SpeakerUser, "original")

	turns := tr.Turns()
	turns[0].Text = "mutated"

	if got := tr.Turns()[0].Text; got != "original" {
		t.Fatalf("caller mutation leaked into the transcript: %q", got)
	}
}

func TestTranscriptLastEmpty(t *testing.T) {
	tr := NewTranscript()
	if _, ok := tr.Last(); ok {
		t.Fatal("Last reported a turn on an empty transcript")
	}
}

func TestTranscriptClear(t *testing.T) {
	tr := NewTranscript()
	tr.Append(SpeakerUser, "hello")
	tr.Clear()

	if tr.Len() != 0 {
		t.Fatalf("len = %d after clear, want 0", tr.Len())
	}
	if turns := tr.Turns(); len(turns) != 0 {
		t.Fatalf("turns = %v after clear, want none", turns)
	}
}
