package vcf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestSource(t *testing.T, mode Mode) *MemorySource {
	t.Helper()
	p, err := NewParserFromReader(strings.NewReader(testVCF))
	require.NoError(t, err)
	src, err := LoadMemory(p, Options{Mode: mode})
	require.NoError(t, err)
	return src
}

func positions(vs []*Variant) []int64 {
	out := make([]int64, len(vs))
	for i, v := range vs {
		out[i] = v.Pos
	}
	return out
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeBPResolution, false},
		{"BP_RESOLUTION", ModeBPResolution, false},
		{"gvcf", ModeGVCF, false},
		{"GVCF", ModeGVCF, false},
		{"blocks", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "GVCF", ModeGVCF.String())
	assert.Equal(t, "BP_RESOLUTION", ModeBPResolution.String())
}

func TestMemorySource_Fetch(t *testing.T) {
	bp := loadTestSource(t, ModeBPResolution)
	gvcf := loadTestSource(t, ModeGVCF)

	assert.Equal(t, 4, bp.Len())
	assert.Equal(t, []string{"S1", "S2"}, bp.Samples())
	assert.True(t, bp.Concurrent())

	tests := []struct {
		name  string
		src   *MemorySource
		chrom string
		start int64
		stop  int64
		want  []int64
	}{
		{"bp region", bp, "chr1", 100, 130, []int64{100, 120}},
		{"bp inclusive bounds", bp, "chr1", 120, 310, []int64{120, 310}},
		{"bp inside reference block", bp, "chr1", 140, 145, []int64{}},
		{"gvcf inside reference block", gvcf, "chr1", 140, 145, []int64{100}},
		{"gvcf block end inclusive", gvcf, "chr1", 150, 200, []int64{100}},
		{"gvcf past block", gvcf, "chr1", 151, 200, []int64{}},
		{"alias without prefix", bp, "1", 100, 400, []int64{100, 120, 310}},
		{"single position", bp, "chr2", 5, 5, []int64{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.src.Fetch(tt.chrom, tt.start, tt.stop)
			require.NoError(t, err)
			assert.Equal(t, tt.want, positions(got))
		})
	}
}

func TestMemorySource_RegionErrors(t *testing.T) {
	src := loadTestSource(t, ModeBPResolution)

	_, err := src.Fetch("chr9", 1, 100)
	assert.True(t, IsRegionError(err))
	assert.ErrorIs(t, err, ErrUnknownChrom)

	_, err = src.Fetch("chr1", 200, 100)
	assert.True(t, IsRegionError(err))
	assert.ErrorIs(t, err, ErrInvertedRegion)

	_, err = src.Fetch("", 1, 2)
	assert.True(t, IsRegionError(err))
}

func TestOpen_WithoutIndex(t *testing.T) {
	path := writeTestFile(t, "plain.vcf", testVCF)

	src, err := Open(path, Options{Mode: ModeGVCF})
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, []string{"S1", "S2"}, src.Samples())
	got, err := src.Fetch("chr1", 140, 140)
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, positions(got))
}

func TestOpenTabix_MissingIndex(t *testing.T) {
	path := writeTestFile(t, "plain.vcf.gz", testVCF)

	_, err := OpenTabix(path, Options{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "open tabix index")
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open("/nonexistent/sample.g.vcf", Options{})
	assert.Error(t, err)
}
