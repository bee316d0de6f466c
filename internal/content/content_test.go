package content

import (
	"testing"

	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

func TestScore(t *testing.T) {
	text := `Syllabus for the semester. Your first assignment is due Friday.
The midterm exam covers lecture one through lecture nine. Office hours
after each lecture.`

	got, ok := Score(text)

	if !ok {
		t.Fatal("expected a keyword hit")
	}
	if got.CategoryID != types.CatSchool {
		t.Errorf("category = %s, want school", got.CategoryID)
	}
	if got.Confidence != HintConfidence {
		t.Errorf("confidence = %v, want %v", got.Confidence, HintConfidence)
	}
}

func TestScoreNoHits(t *testing.T) {
	_, ok := Score("zzz qqq xxx")
	if ok {
		t.Error("expected no hit for keyword-free text")
	}
}

func TestScoreCountsRepeats(t *testing.T) {
	// "price" (shopping) appears three times, "meeting" (work) once, so
	// shopping wins despite work enumerating first.
	text := "meeting notes: compare price A, price B and price C"

	got, ok := Score(text)

	if !ok {
		t.Fatal("expected a keyword hit")
	}
	if got.CategoryID != types.CatShopping {
		t.Errorf("category = %s, want shopping", got.CategoryID)
	}
}

func TestFetchReadableSkipsPrivilegedURLs(t *testing.T) {
	for _, url := range []string{"about:blank", "chrome://settings", "file:///etc/passwd"} {
		if _, _, err := FetchReadable(url); err == nil {
			t.Errorf("expected error for %s", url)
		}
	}
}
