package journal

import (
	"reflect"
	"testing"
)

func TestFrequency(t *testing.T) {
	paragraphs := []ParagraphLabels{
		{Emotion: []Label{{Name: "joy"}}, Context: []Label{{Name: "work"}}},
		{Emotion: []Label{{Name: "joy"}}, Context: []Label{{Name: "home"}}},
		{Emotion: []Label{{Name: "calm"}}, Context: []Label{{Name: "work"}}},
		{},
	}

	emotion := Frequency(paragraphs, "emotion")
	if emotion["joy"] != 2 || emotion["calm"] != 1 {
		t.Errorf("emotion = %v", emotion)
	}
	context := Frequency(paragraphs, "context")
	if context["work"] != 2 || context["home"] != 1 {
		t.Errorf("context = %v", context)
	}
}

func TestTopLabels(t *testing.T) {
	freq := map[string]int{"joy": 3, "calm": 2, "fear": 1}

	got := TopLabels(freq, 1)
	if !reflect.DeepEqual(got, []string{"joy"}) {
		t.Errorf("top 1 = %v", got)
	}
}

func TestTopLabels_TieShowsAll(t *testing.T) {
	freq := map[string]int{"joy": 2, "calm": 2, "fear": 1}

	got := TopLabels(freq, 1)
	if !reflect.DeepEqual(got, []string{"calm", "joy"}) {
		t.Errorf("tied top = %v", got)
	}
}

func TestTopLabels_KLargerThanSet(t *testing.T) {
	freq := map[string]int{"joy": 2, "calm": 1}

	got := TopLabels(freq, 5)
	if !reflect.DeepEqual(got, []string{"joy", "calm"}) {
		t.Errorf("got %v", got)
	}
}

func TestTopLabels_Empty(t *testing.T) {
	if got := TopLabels(nil, 3); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}
