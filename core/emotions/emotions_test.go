package emotions

import "testing"

func TestDetectMatchesEnglishKeywords(t *testing.T) {
	emotion, ok := Detect("Haha, that's awesome!")
	if !ok {
		t.Fatalf("expected a detection, got none")
	}
	if emotion != Happy {
		t.Fatalf("expected happy, got %s", emotion)
	}
}

func TestDetectMatchesChineseKeywords(t *testing.T) {
	emotion, ok := Detect("对不起，我来晚了")
	if !ok {
		t.Fatalf("expected a detection, got none")
	}
	if emotion != Sad {
		t.Fatalf("expected sad, got %s", emotion)
	}
}

func TestDetectIsCaseInsensitive(t *testing.T) {
	emotion, ok := Detect("WOW, REALLY?")
	if !ok {
		t.Fatalf("expected a detection, got none")
	}
	if emotion != Surprised {
		t.Fatalf("expected surprised, got %s", emotion)
	}
}

func TestDetectNeutralWithoutKeywords(t *testing.T) {
	emotion, ok := Detect("the meeting is at three")
	if ok {
		t.Fatalf("expected no detection, got %s", emotion)
	}
	if emotion != Neutral {
		t.Fatalf("expected neutral fallback, got %s", emotion)
	}
}

func TestDetectHigherScoreWins(t *testing.T) {
	// One sad keyword against two angry ones.
	emotion, ok := Detect("sorry, stop right there, this is a warning")
	if !ok {
		t.Fatalf("expected a detection, got none")
	}
	if emotion != Angry {
		t.Fatalf("expected angry, got %s", emotion)
	}
}

func TestDetectTieKeepsFirstCategory(t *testing.T) {
	// "haha" scores happy, "sorry" scores sad; happy is scored first.
	emotion, ok := Detect("haha sorry")
	if !ok {
		t.Fatalf("expected a detection, got none")
	}
	if emotion != Happy {
		t.Fatalf("expected happy to win the tie, got %s", emotion)
	}
}

func TestParseEmotionNormalizesTags(t *testing.T) {
	if got := ParseEmotion(" Surprise "); got != Surprised {
		t.Fatalf("expected surprised, got %s", got)
	}
	if got := ParseEmotion("HAPPY"); got != Happy {
		t.Fatalf("expected happy, got %s", got)
	}
	if got := ParseEmotion("bogus"); got != Neutral {
		t.Fatalf("expected neutral for unknown tag, got %s", got)
	}
}

func TestWireNameSpellsSurprise(t *testing.T) {
	if got := Surprised.WireName(); got != "surprise" {
		t.Fatalf("expected surprise, got %s", got)
	}
	if got := Happy.WireName(); got != "happy" {
		t.Fatalf("expected happy, got %s", got)
	}
}

func TestDefaultEmpathyDeescalatesAnger(t *testing.T) {
	mapping := DefaultEmpathyMapping()

	if got := mapping.Respond(Angry); got != Neutral {
		t.Fatalf("expected neutral response to anger, got %s", got)
	}
	if got := mapping.Respond(Sad); got != Sad {
		t.Fatalf("expected sad response to sadness, got %s", got)
	}
	if got := mapping.Respond(Surprised); got != Happy {
		t.Fatalf("expected happy response to surprise, got %s", got)
	}
}

func TestEmpathyRespondDefaultsToNeutral(t *testing.T) {
	mapping := EmpathyMapping{}
	if got := mapping.Respond(Happy); got != Neutral {
		t.Fatalf("expected neutral for unmapped emotion, got %s", got)
	}
}
