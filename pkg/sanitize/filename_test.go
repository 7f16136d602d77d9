package sanitize

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"vietnamese diacritics", "Sơ yếu lý lịch.pdf", "so-yeu-ly-lich.pdf"},
		{"dj folding", "Đơn xin việc.pdf", "don-xin-viec.pdf"},
		{"plain ascii", "resume.pdf", "resume.pdf"},
		{"uppercase base", "My Resume.PDF", "my-resume.PDF"},
		{"whitespace runs", "a   b\tc.pdf", "a-b-c.pdf"},
		{"specials stripped", "cv (final)!@#.pdf", "cv-final.pdf"},
		{"underscore kept", "cv_2024.pdf", "cv_2024.pdf"},
		{"no extension", "resume", "resume"},
		{"multiple dots", "cv.final.v2.pdf", "cvfinalv2.pdf"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.in))
		})
	}
}

func TestFilenameIdempotent(t *testing.T) {
	inputs := []string{
		"Sơ yếu lý lịch.pdf",
		"Đặng Văn Đức - CV.pdf",
		"resume.pdf",
		"weird   name!!.PDF",
		"no-extension",
	}

	for _, in := range inputs {
		once := Filename(in)
		assert.Equal(t, once, Filename(once), "sanitize must be idempotent for %q", in)
	}
}

func TestFilenameCharset(t *testing.T) {
	// Base must only contain alphanumerics, hyphens and underscores.
	baseCharset := regexp.MustCompile(`^[a-z0-9_-]*$`)

	inputs := []string{
		"Sơ yếu lý lịch.pdf",
		"résumé için (2024).pdf",
		"日本語のファイル.pdf",
		"spaces and UPPER.pdf",
	}

	for _, in := range inputs {
		got := Filename(in)
		base := got
		if i := len(got) - len(".pdf"); i >= 0 && got[i:] == ".pdf" {
			base = got[:i]
		}
		assert.True(t, baseCharset.MatchString(base), "base %q of %q has disallowed characters", base, got)
	}
}
