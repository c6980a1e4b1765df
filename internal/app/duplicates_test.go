package app

import (
	"regexp"
	"testing"
)

func TestTitlePatternToleratesWhitespaceAndCase(t *testing.T) {
	re := regexp.MustCompile("(?i)" + TitlePattern("Continuous Integration"))

	for _, title := range []string{
		"continuousintegration",
		"Continuous   Integration",
		"CONTINUOUS INTEGRATION",
		"c o n t i n u o u s integration",
		"A Study of Continuous Integration in Practice", // substring match
	} {
		if !re.MatchString(title) {
			t.Fatalf("expected pattern to match %q", title)
		}
	}
}

func TestTitlePatternDoesNotStripPunctuation(t *testing.T) {
	re := regexp.MustCompile("(?i)" + TitlePattern("Test-Driven Development"))
	if re.MatchString("testdriven development") {
		t.Fatal("hyphen is not whitespace; pattern should not match the stripped form")
	}
	if !re.MatchString("Test-Driven   Development") {
		t.Fatal("expected match when punctuation is preserved")
	}
}

func TestTitlePatternQuotesRegexMetacharacters(t *testing.T) {
	pattern := TitlePattern("C++ (vs. Go?)")
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		t.Fatalf("pattern must stay a valid regex: %v", err)
	}
	if !re.MatchString("c++ (vs. go?)") {
		t.Fatal("expected literal match of metacharacters")
	}
	if re.MatchString("cxx vs go") {
		t.Fatal("metacharacters must not act as regex operators")
	}
}
