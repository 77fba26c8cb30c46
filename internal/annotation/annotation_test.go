package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscript_AddExon(t *testing.T) {
	tx := &Transcript{Name: "T1", Gene: "G1", Chrom: "chr1", Start: 100, End: 400}

	e0, err := NewExon("G1", "T1", "chr1", 100, 200, 0)
	require.NoError(t, err)
	e1, err := NewExon("G1", "T1", "chr1", 300, 400, 1)
	require.NoError(t, err)

	require.NoError(t, tx.AddExon(e0))
	require.NoError(t, tx.AddExon(e1))
	require.Len(t, tx.Exons, 2)
	assert.Equal(t, 0, tx.Exons[0].Number)
	assert.Equal(t, 1, tx.Exons[1].Number)
}

func TestTranscript_AddExon_KeepsPresentationOrder(t *testing.T) {
	tx := &Transcript{Name: "T1", Start: 0, End: 1000}

	for _, e := range []Exon{
		{Start: 500, Stop: 600, Number: 0},
		{Start: 100, Stop: 200, Number: 1},
		{Start: 100, Stop: 200, Number: 2},
	} {
		require.NoError(t, tx.AddExon(e))
	}

	require.Len(t, tx.Exons, 3, "duplicates are kept")
	assert.Equal(t, int64(500), tx.Exons[0].Start)
	assert.Equal(t, int64(100), tx.Exons[1].Start)
}

func TestTranscript_AddExon_OutOfBounds(t *testing.T) {
	tests := []struct {
		name        string
		start, stop int64
	}{
		{"starts before transcript", 99, 150},
		{"ends after transcript", 150, 401},
		{"entirely outside", 500, 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &Transcript{Name: "T1", Start: 100, End: 400}
			err := tx.AddExon(Exon{Start: tt.start, Stop: tt.stop})

			var ire *InvalidRegionError
			require.ErrorAs(t, err, &ire)
			assert.Equal(t, "T1", ire.Transcript)
			assert.Empty(t, tx.Exons, "rejected exon must not be attached")
		})
	}
}

func TestTranscript_AddExon_BoundariesInclusive(t *testing.T) {
	tx := &Transcript{Start: 100, End: 400}
	assert.NoError(t, tx.AddExon(Exon{Start: 100, Stop: 400}))
}

func TestNewExon_Inverted(t *testing.T) {
	_, err := NewExon("G1", "T1", "chr1", 200, 100, 0)

	var ire *InvalidRegionError
	require.ErrorAs(t, err, &ire)
	assert.Contains(t, ire.Error(), "exon start is after exon stop")
}

func TestGene_AddTranscript(t *testing.T) {
	g := NewGene("G1")
	g.AddTranscript(&Transcript{Name: "T1", Chrom: "chr1", Start: 10, End: 50})
	g.AddTranscript(&Transcript{Name: "T2", Chrom: "chr1", Start: 5, End: 40})

	assert.Equal(t, int64(5), g.Start)
	assert.Equal(t, int64(50), g.End)
	assert.Equal(t, "chr1", g.Chrom)
	assert.Len(t, g.Transcripts, 2)
}

func TestGene_AddTranscript_OrderIndependent(t *testing.T) {
	a := &Transcript{Name: "T1", Start: 10, End: 50}
	b := &Transcript{Name: "T2", Start: 5, End: 40}

	g1 := NewGene("G")
	g1.AddTranscript(a)
	g1.AddTranscript(b)

	g2 := NewGene("G")
	g2.AddTranscript(b)
	g2.AddTranscript(a)

	assert.Equal(t, g1.Start, g2.Start)
	assert.Equal(t, g1.End, g2.End)
}

func TestGene_AddTranscript_FirstSeedsZeroStart(t *testing.T) {
	g := NewGene("G")
	g.AddTranscript(&Transcript{Start: 0, End: 20})
	g.AddTranscript(&Transcript{Start: 3, End: 10})

	assert.Equal(t, int64(0), g.Start)
	assert.Equal(t, int64(20), g.End)
}

func TestGroupGenes(t *testing.T) {
	transcripts := []*Transcript{
		{Name: "T1", Gene: "B", Chrom: "chr1", Start: 100, End: 200},
		{Name: "T2", Gene: "A", Chrom: "chr1", Start: 500, End: 900},
		{Name: "T3", Gene: "B", Chrom: "chr1", Start: 50, End: 150},
		{Name: "T4", Gene: "B", Chrom: "chrX", Start: 1, End: 2},
	}

	genes := GroupGenes(transcripts)
	require.Len(t, genes, 3)

	assert.Equal(t, "B", genes[0].Name)
	assert.Equal(t, int64(50), genes[0].Start)
	assert.Equal(t, int64(200), genes[0].End)
	assert.Len(t, genes[0].Transcripts, 2)

	assert.Equal(t, "A", genes[1].Name)
	assert.Equal(t, "chrX", genes[2].Chrom)
}
