// Package annotation provides the gene/transcript/exon model and refFlat loading.
package annotation

// Gene represents a genomic region with associated transcripts.
type Gene struct {
	Name        string        // Gene symbol (e.g., KRAS)
	Chrom       string        // Chromosome
	Start       int64         // Lowest transcript start
	End         int64         // Highest transcript end
	Transcripts []*Transcript // Associated transcripts, in insertion order
}

// NewGene creates an empty gene.
func NewGene(name string) *Gene {
	return &Gene{Name: name}
}

// AddTranscript appends a transcript and widens the gene span to cover it.
// The first transcript seeds Start and End.
func (g *Gene) AddTranscript(t *Transcript) {
	if len(g.Transcripts) == 0 {
		g.Chrom = t.Chrom
		g.Start = t.Start
		g.End = t.End
	} else {
		if t.Start < g.Start {
			g.Start = t.Start
		}
		if t.End > g.End {
			g.End = t.End
		}
	}
	g.Transcripts = append(g.Transcripts, t)
}

// GroupGenes groups transcripts into genes by gene symbol and chromosome,
// in order of first appearance.
func GroupGenes(transcripts []*Transcript) []*Gene {
	type key struct{ name, chrom string }

	index := make(map[key]*Gene)
	var genes []*Gene
	for _, t := range transcripts {
		k := key{t.Gene, t.Chrom}
		g, ok := index[k]
		if !ok {
			g = NewGene(t.Gene)
			index[k] = g
			genes = append(genes, g)
		}
		g.AddTranscript(t)
	}
	return genes
}
