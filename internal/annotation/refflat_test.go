package annotation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const krasLine = "KRAS\tNM_004985\tchr12\t-\t25205245\t25250929\t25209794\t25245384\t5\t25205245,25225613,25227233,25245273,25250750,\t25209911,25225773,25227412,25245395,25250929,"

func TestParseRefFlat_KRAS(t *testing.T) {
	tx, err := ParseRefFlat(krasLine, 1)
	require.NoError(t, err)

	assert.Equal(t, "KRAS", tx.Gene)
	assert.Equal(t, "NM_004985", tx.Name)
	assert.Equal(t, "chr12", tx.Chrom)
	assert.Equal(t, int8(-1), tx.Strand)
	assert.Equal(t, int64(25205245), tx.Start)
	assert.Equal(t, int64(25250929), tx.End)
	assert.Equal(t, int64(25209797), tx.CDSStart)
	assert.Equal(t, int64(25245384), tx.CDSEnd)

	require.Len(t, tx.Exons, 5)
	for i, e := range tx.Exons {
		assert.Equal(t, i, e.Number, "exon ordinals are 0-based in column order")
		assert.Equal(t, "KRAS", e.Gene)
		assert.Equal(t, "NM_004985", e.Transcript)
		assert.Equal(t, "chr12", e.Chrom)
	}
	assert.Equal(t, int64(25205245), tx.Exons[0].Start)
	assert.Equal(t, int64(25209911), tx.Exons[0].Stop)
}

func TestParseRefFlat_NoTrailingComma(t *testing.T) {
	line := "G1\tT1\tchr1\t+\t100\t400\t100\t100\t2\t100,300\t200,400"
	tx, err := ParseRefFlat(line, 3)
	require.NoError(t, err)
	require.Len(t, tx.Exons, 2)
	assert.Equal(t, tx.CDSStart, tx.CDSEnd)
	assert.Equal(t, int64(300), tx.Exons[1].Start)
}

func TestParseRefFlat_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
		msg  string
	}{
		{"too few columns", "G1\tT1\tchr1", "expected 11 columns, found 3"},
		{"bad txStart", "G1\tT1\tchr1\t+\tx\t400\t100\t100\t1\t100,\t200,", "invalid txStart"},
		{"bad exonCount", "G1\tT1\tchr1\t+\t100\t400\t100\t100\tn\t100,\t200,", "invalid exonCount"},
		{"bad exon list", "G1\tT1\tchr1\t+\t100\t400\t100\t100\t1\t1a0,\t200,", "invalid exonStarts"},
		{"count mismatch", "G1\tT1\tchr1\t+\t100\t400\t100\t100\t2\t100,\t200,", "exonCount is 2"},
		{"list mismatch", "G1\tT1\tchr1\t+\t100\t400\t100\t100\t1\t100,300,\t200,", "2 exon starts but 1 exon ends"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRefFlat(tt.line, 7)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, 7, pe.Line)
			assert.Contains(t, pe.Error(), tt.msg)
		})
	}
}

func TestParseRefFlat_ExonOutsideTranscript(t *testing.T) {
	line := "G1\tT1\tchr1\t+\t100\t400\t100\t100\t2\t50,300,\t200,400,"
	_, err := ParseRefFlat(line, 12)

	var ire *InvalidRegionError
	require.ErrorAs(t, err, &ire)
	assert.Equal(t, 12, ire.Line)
	assert.Equal(t, 0, ire.Exon)
	assert.Contains(t, ire.Error(), "line 12")
}

func TestReader_PlainAndGzip(t *testing.T) {
	content := strings.Join([]string{
		"# comment",
		krasLine,
		"",
		"G1\tT1\tchr1\t+\t100\t400\t150\t350\t2\t100,300,\t200,400,",
	}, "\n") // no trailing newline on purpose

	dir := t.TempDir()
	plain := filepath.Join(dir, "refFlat.txt")
	require.NoError(t, os.WriteFile(plain, []byte(content), 0644))

	gzPath := filepath.Join(dir, "refFlat.txt.gz")
	f, err := os.Create(gzPath)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	for _, path := range []string{plain, gzPath} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			transcripts, err := ReadAll(path)
			require.NoError(t, err)
			require.Len(t, transcripts, 2)
			assert.Equal(t, "NM_004985", transcripts[0].Name)
			assert.Equal(t, "T1", transcripts[1].Name)
		})
	}
}

func TestReader_LineNumberInError(t *testing.T) {
	r := NewReaderFrom(strings.NewReader("#header\n" + krasLine + "\nbroken\n"))
	defer r.Close()

	tx, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, tx)

	_, err = r.Next()
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Line)
}

func TestReadAll_MissingFile(t *testing.T) {
	_, err := ReadAll(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUCSCDSN(t *testing.T) {
	assert.Equal(t, "genome@tcp(genome-mysql.soe.ucsc.edu:3306)/hg38", UCSCDSN("hg38"))
}

func TestImportUCSC_RejectsTableName(t *testing.T) {
	_, err := ImportUCSC(t.Context(), UCSCDSN("hg38"), "refFlat; DROP TABLE x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")
}
