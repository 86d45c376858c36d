package documents

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func writeZip(t *testing.T, path string, parts map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

const docxXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Skills: </w:t></w:r><w:r><w:t>Go</w:t></w:r><w:r><w:tab/><w:t>Kubernetes</w:t></w:r></w:p>
  </w:body>
</w:document>`

func slideXML(lines ...string) string {
	body := ""
	for _, l := range lines {
		body += `<a:p><a:r><a:t>` + l + `</a:t></a:r></a:p>`
	}
	return `<?xml version="1.0" encoding="UTF-8"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld><p:spTree><p:sp><p:txBody>` + body + `</p:txBody></p:sp></p:spTree></p:cSld>
</p:sld>`
}

func TestReadDOCX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jane.docx")
	writeZip(t, path, map[string]string{docxBody: docxXML})

	text, err := readDOCX(path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSkills: Go\tKubernetes", text)
}

func TestReadPPTXOrdersSlidesNumerically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Platform.pptx")
	writeZip(t, path, map[string]string{
		"ppt/slides/slide10.xml": slideXML("Tenth"),
		"ppt/slides/slide2.xml":  slideXML("Second"),
		"ppt/slides/slide1.xml":  slideXML("Platform team", "Needs Terraform"),
	})

	text, err := readPPTX(path)
	require.NoError(t, err)
	assert.Equal(t, "--- Slide 1 ---\nPlatform team\nNeeds Terraform\n\n--- Slide 2 ---\nSecond\n\n--- Slide 3 ---\nTenth", text)
}

func TestReadPPTXWithoutText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blank.pptx")
	writeZip(t, path, map[string]string{"ppt/slides/slide1.xml": slideXML()})

	_, err := readPPTX(path)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestReadPDFRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o600))

	_, err := readPDF(path)
	assert.Error(t, err)
}

func TestRegistryLookup(t *testing.T) {
	r := DefaultRegistry()

	for _, ext := range []string{".PDF", "docx", ".pptx", "txt", ".md", ".doc", "ppt"} {
		_, ok := r.Lookup(ext)
		assert.True(t, ok, ext)
	}

	_, ok := r.Lookup(".xlsx")
	assert.False(t, ok)

	assert.Equal(t, []string{"doc", "docx", "md", "pdf", "ppt", "pptx", "txt"}, r.Formats())
}

func TestNameOf(t *testing.T) {
	assert.Equal(t, "Backend_Engineering", NameOf("/jds/Backend_Engineering.docx"))
	assert.Equal(t, "DataScience", NameOf("DataScience.pdf"))
	assert.Equal(t, "team.v2", NameOf("team.v2.txt"))
}

func TestLoadOrdersAndSkips(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_bob.txt"), []byte("Bob\nPython"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_alice.md"), []byte("# Alice\nGo"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c_empty.txt"), []byte("   \n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "d_legacy.doc"), []byte{0xD0, 0xCF}, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.xlsx"), []byte("ignored"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.txt"), 0o755))

	core, observed := observer.New(zapcore.WarnLevel)
	docs, err := NewLoader(nil, 2, zap.New(core)).Load(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, []string{"a_alice", "b_bob"}, Names(docs))
	assert.Equal(t, "md", docs[0].Format)
	assert.Equal(t, "Bob\nPython", docs[1].Text)

	assert.Equal(t, 1, observed.FilterMessage("skipping empty document").Len())
	assert.Equal(t, 1, observed.FilterMessage("skipping document in a legacy binary format, convert it to docx/pptx").Len())
}

func TestLoadCustomReader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.csv"), []byte("raw"), 0o600))

	reg := NewRegistry()
	reg.Register(".csv", ReaderFunc(func(path string) (string, error) { return "parsed " + NameOf(path), nil }))

	docs, err := NewLoader(reg, 1, nil).Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "parsed x", docs[0].Text)
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := NewLoader(nil, 0, nil).Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestLoadCancelled(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(nil, 1, nil).Load(ctx, dir)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
