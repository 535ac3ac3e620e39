package extractor

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"

	"github.com/slack-tools/slackfetch/internal/pkg/stats"
)

func TestMain(m *testing.M) {
	stats.Init()
	m.Run()
}

func TestExtract_FilesList(t *testing.T) {
	appFS := afero.NewMemMapFs()

	afero.WriteFile(appFS, "export.json", []byte(`{
		"files": [
			{"url_private_download": "https://x/T1-F1/download/report.pdf"},
			{"url_private_download": "https://x/T2-F2/download/report.pdf"},
			{"name": "no download link"}
		]
	}`), 0644)

	count, err := Extract(appFS, "export.json", "work.txt", false)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)

	content, _ := afero.ReadFile(appFS, "work.txt")
	assert.Equal(t,
		"https://x/T1-F1/download/report.pdf\nhttps://x/T2-F2/download/report.pdf\n",
		string(content))
}

func TestExtract_ListOfRecords(t *testing.T) {
	appFS := afero.NewMemMapFs()

	afero.WriteFile(appFS, "export.json", []byte(`[
		{"files": [{"url_private_download": "https://x/a/download/one.png"}]},
		"not a record",
		{"text": "no files here"},
		{"files": [{"url_private_download": "https://x/b/download/two.png"}]}
	]`), 0644)

	count, err := Extract(appFS, "export.json", "work.txt", false)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestExtract_AppendsAcrossFiles(t *testing.T) {
	appFS := afero.NewMemMapFs()

	afero.WriteFile(appFS, "a.json", []byte(`{"files": [{"url_private_download": "https://x/a/download/one.png"}]}`), 0644)
	afero.WriteFile(appFS, "b.json", []byte(`{"files": [{"url_private_download": "https://x/b/download/two.png"}]}`), 0644)

	_, err := Extract(appFS, "a.json", "work.txt", false)
	assert.NoError(t, err)
	_, err = Extract(appFS, "b.json", "work.txt", false)
	assert.NoError(t, err)

	content, _ := afero.ReadFile(appFS, "work.txt")
	assert.Equal(t, "https://x/a/download/one.png\nhttps://x/b/download/two.png\n", string(content))
}

func TestExtract_InvalidJSON(t *testing.T) {
	appFS := afero.NewMemMapFs()

	afero.WriteFile(appFS, "broken.json", []byte(`{"files": [`), 0644)

	count, err := Extract(appFS, "broken.json", "work.txt", false)
	assert.Error(t, err)
	assert.Equal(t, 0, count)

	exists, _ := afero.Exists(appFS, "work.txt")
	assert.False(t, exists)
}

func TestExtract_MissingFile(t *testing.T) {
	appFS := afero.NewMemMapFs()

	count, err := Extract(appFS, "nope.json", "work.txt", false)
	assert.Error(t, err)
	assert.Equal(t, 0, count)
}

func TestExtract_ScanText(t *testing.T) {
	appFS := afero.NewMemMapFs()

	afero.WriteFile(appFS, "export.json", []byte(`{
		"text": "see https://x/T1-F9/download/notes.txt and https://example.com/page"
	}`), 0644)

	count, err := Extract(appFS, "export.json", "work.txt", true)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	content, _ := afero.ReadFile(appFS, "work.txt")
	assert.Equal(t, "https://x/T1-F9/download/notes.txt\n", string(content))
}

func TestExtractDir(t *testing.T) {
	appFS := afero.NewMemMapFs()

	appFS.MkdirAll("export/sub", 0755)
	afero.WriteFile(appFS, "export/a.json", []byte(`{"files": [{"url_private_download": "https://x/a/download/one.png"}]}`), 0644)
	afero.WriteFile(appFS, "export/broken.json", []byte(`not json`), 0644)
	afero.WriteFile(appFS, "export/readme.txt", []byte(`ignored`), 0644)
	// Subdirectories are not visited
	afero.WriteFile(appFS, "export/sub/c.json", []byte(`{"files": [{"url_private_download": "https://x/c/download/three.png"}]}`), 0644)

	total, err := ExtractDir(appFS, "export", "extracted_urls.txt", false)
	assert.NoError(t, err)
	assert.Equal(t, 1, total)

	content, _ := afero.ReadFile(appFS, "export/extracted_urls.txt")
	assert.Equal(t, "https://x/a/download/one.png\n", string(content))
}

func TestExtractDir_Empty(t *testing.T) {
	appFS := afero.NewMemMapFs()

	appFS.MkdirAll("export", 0755)

	total, err := ExtractDir(appFS, "export", "extracted_urls.txt", false)
	assert.NoError(t, err)
	assert.Equal(t, 0, total)

	exists, _ := afero.Exists(appFS, "export/extracted_urls.txt")
	assert.False(t, exists)
}
