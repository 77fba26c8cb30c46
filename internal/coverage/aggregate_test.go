package coverage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/gvcfcov/internal/vcf"
)

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, Options{}.Validate())
	assert.NoError(t, Options{Percentage: true, Threshold: threshold(0)}.Validate())
	assert.NoError(t, Options{Threshold: threshold(10)}.Validate(), "threshold alone is ignored")
	assert.ErrorIs(t, Options{Percentage: true}.Validate(), ErrThresholdRequired)

	_, err := NewAggregator(&fakeSource{}, Options{Mode: ModeGQX, Percentage: true})
	assert.ErrorIs(t, err, ErrThresholdRequired)
}

func TestAggregate_NoRecordsIsZero(t *testing.T) {
	sources := map[string]*fakeSource{
		"empty region": {records: []*vcf.Variant{record(500, "10", "10", 10)}},
		"region fault": {err: &vcf.RegionError{Chrom: "chr1", Start: 100, Stop: 200, Err: vcf.ErrUnknownChrom}},
	}
	optionSets := map[string]Options{
		"mean depth":    {Mode: ModeDepth},
		"mean gqx":      {Mode: ModeGQX},
		"percent depth": {Mode: ModeDepth, Percentage: true, Threshold: threshold(0)},
		"percent gqx":   {Mode: ModeGQX, Percentage: true, Threshold: threshold(20)},
	}

	for sname, src := range sources {
		for oname, opts := range optionSets {
			t.Run(sname+"/"+oname, func(t *testing.T) {
				agg, err := NewAggregator(src, opts)
				require.NoError(t, err)
				got, err := agg.Aggregate(exon(t, 100, 200, 0), "S1")
				require.NoError(t, err)
				assert.Equal(t, 0.0, got)
			})
		}
	}
}

func TestAggregate_OtherFetchErrorsPropagate(t *testing.T) {
	ioErr := errors.New("bgzf: corrupt block")
	agg, err := NewAggregator(&fakeSource{err: ioErr}, Options{})
	require.NoError(t, err)

	_, err = agg.Aggregate(exon(t, 100, 200, 0), "S1")
	assert.ErrorIs(t, err, ioErr)
	assert.False(t, vcf.IsRegionError(err))
}

func TestAggregate_Mean(t *testing.T) {
	recs := []*vcf.Variant{
		record(110, "10", "5", 40),
		record(150, "20", "50", 40),
		record(190, "30", "70", -1),
	}

	tests := []struct {
		name string
		mode Mode
		want float64
	}{
		{"depth", ModeDepth, 20},
		{"gqx", ModeGQX, (5.0 + 40 + 70) / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg, err := NewAggregator(&fakeSource{records: recs}, Options{Mode: tt.mode})
			require.NoError(t, err)
			got, err := agg.Aggregate(exon(t, 100, 200, 0), "S1")
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestAggregate_MeanReorderInvariant(t *testing.T) {
	depths := []string{"3", "17", "4.5", "100", "0"}
	forward := make([]*vcf.Variant, len(depths))
	reverse := make([]*vcf.Variant, len(depths))
	for i, d := range depths {
		forward[i] = record(int64(100+i), d, "1", -1)
		reverse[len(depths)-1-i] = record(int64(100+i), d, "1", -1)
	}

	a1, err := NewAggregator(&fakeSource{records: forward}, Options{})
	require.NoError(t, err)
	a2, err := NewAggregator(&fakeSource{records: reverse}, Options{})
	require.NoError(t, err)

	got1, err := a1.Aggregate(exon(t, 100, 200, 0), "S1")
	require.NoError(t, err)
	got2, err := a2.Aggregate(exon(t, 100, 200, 0), "S1")
	require.NoError(t, err)

	assert.InDelta(t, 124.5/5, got1, 1e-9)
	assert.InDelta(t, got1, got2, 1e-9)
}

func TestAggregate_Percentage(t *testing.T) {
	recs := []*vcf.Variant{
		record(110, "10", "1", -1),
		record(150, "20", "1", -1),
		record(190, "30", "1", -1),
	}

	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{"two of three pass", 15, 100 * 2.0 / 3},
		{"boundary inclusive", 20, 100 * 2.0 / 3},
		{"all pass", 10, 100},
		{"none pass", 31, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg, err := NewAggregator(&fakeSource{records: recs}, Options{Percentage: true, Threshold: threshold(tt.threshold)})
			require.NoError(t, err)
			got, err := agg.Aggregate(exon(t, 100, 200, 0), "S1")
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestAggregate_MissingFieldIsFatal(t *testing.T) {
	recs := []*vcf.Variant{
		record(110, "10", "1", -1),
		record(150, ".", "1", -1),
	}
	agg, err := NewAggregator(&fakeSource{records: recs}, Options{})
	require.NoError(t, err)

	_, err = agg.Aggregate(exon(t, 100, 200, 0), "S1")
	var mfe *MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, int64(150), mfe.Pos)
}
