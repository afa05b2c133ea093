package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDiagnostics(t *testing.T) {
	t.Run("empty stream yields nothing", func(t *testing.T) {
		warnings, fatal := classifyDiagnostics("")
		assert.Empty(t, warnings)
		assert.Empty(t, fatal)
	})

	t.Run("known informational markers are benign", func(t *testing.T) {
		stderr := `Preprocessing: 1/3
Working: 1/3
WARNING: Indexing all PDF objects
WARNING: The requested image's platform (linux/amd64) does not match the detected host platform
The glyph named mu is mapped to U+00B5
Lookup subtable contains unused glyph NameMe.354`
		warnings, fatal := classifyDiagnostics(stderr)
		assert.Len(t, warnings, 6)
		assert.Empty(t, fatal)
	})

	t.Run("first-run image pull chatter is benign", func(t *testing.T) {
		stderr := `Unable to find image 'pdf2htmlex/pdf2htmlex:0.18.8.rc1-master-20200630-Ubuntu-bionic-x86_64' locally
0.18.8.rc1-master-20200630-Ubuntu-bionic-x86_64: Pulling from pdf2htmlex/pdf2htmlex
6cf436f81810: Pulling fs layer
6cf436f81810: Waiting
6cf436f81810: Verifying Checksum
6cf436f81810: Download complete
6cf436f81810: Pull complete
Digest: sha256:3cd2e2b0d9b569e0a2c2aa1b6
Status: Downloaded newer image for pdf2htmlex/pdf2htmlex:0.18.8.rc1-master-20200630-Ubuntu-bionic-x86_64`
		warnings, fatal := classifyDiagnostics(stderr)
		assert.Len(t, warnings, 9)
		assert.Empty(t, fatal)
	})

	t.Run("unknown diagnostic lines are fatal", func(t *testing.T) {
		stderr := "Preprocessing: 1/1\nCannot load document: encrypted"
		warnings, fatal := classifyDiagnostics(stderr)
		assert.Len(t, warnings, 1)
		assert.Equal(t, []string{"Cannot load document: encrypted"}, fatal)
	})

	t.Run("blank lines are ignored", func(t *testing.T) {
		warnings, fatal := classifyDiagnostics("\n\n   \n")
		assert.Empty(t, warnings)
		assert.Empty(t, fatal)
	})
}
