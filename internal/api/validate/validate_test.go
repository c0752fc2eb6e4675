package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/homeboard/homeboard/internal/model"
)

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "hello world", SanitizeText("  hello   <script>x</script>world "))
	assert.Equal(t, "plain", SanitizeText("plain"))
	assert.Equal(t, "a b", SanitizeText("a\x00\x1f b"))
	assert.Equal(t, "", SanitizeText("<br/>"))
}

func TestSanitizeRawArgs(t *testing.T) {
	raw := model.RawArgs{
		"title":      {" My <em>List</em> "},
		"categories": {"term_7", "<b></b>"},
		"junk":       {"<i></i>"},
	}
	clean := SanitizeRawArgs(raw)
	assert.Equal(t, model.StringList{"My List"}, clean["title"])
	assert.Equal(t, model.StringList{"term_7"}, clean["categories"])
	assert.NotContains(t, clean, "junk")
}

func TestTabName(t *testing.T) {
	assert.NoError(t, TabName("Editorial"))
	// Unnamed tabs are legal; only the length is bounded.
	assert.NoError(t, TabName(""))
	assert.Error(t, TabName(string(make([]byte, 101))))
}

func TestPage(t *testing.T) {
	n, err := Page("4")
	assert.NoError(t, err)
	assert.Equal(t, 4, n)

	for _, raw := range []string{"", "0", "-3", "abc"} {
		_, err := Page(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}
