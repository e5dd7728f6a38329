package fetcher

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, rowCh <-chan []string, errCh <-chan error) ([][]string, error) {
	t.Helper()
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	for err := range errCh {
		if err != nil {
			return rows, err
		}
	}
	return rows, nil
}

const combinedCSV = "EPA Facility ID,Chemical(s),NAICS Code(s)\n" +
	"100000013521,\"Ammonia (anhydrous), Chlorine\",\"325311, 424690\"\n" +
	"100000047712,Propane,221210\n"

func TestStreamCSV_Basic(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(combinedCSV), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"EPA Facility ID", "Chemical(s)", "NAICS Code(s)"}, rows[0])
	assert.Equal(t, []string{"100000013521", "Ammonia (anhydrous), Chlorine", "325311, 424690"}, rows[1])
	assert.Equal(t, []string{"100000047712", "Propane", "221210"}, rows[2])
}

func TestStreamCSV_PipeDelimited(t *testing.T) {
	input := "id|state\n1|AK\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		Delimiter: '|',
	})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "AK"}, rows[1])
}

func TestStreamCSV_WithHeader(t *testing.T) {
	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(combinedCSV), CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
	})

	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "100000013521", rows[0][0])

	header := <-headerCh
	assert.Equal(t, "EPA Facility ID", header[0])
}

func TestStreamCSV_HasHeaderNoHeaderCh(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(combinedCSV), CSVOptions{
		HasHeader: true,
	})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestStreamCSV_StripBOM(t *testing.T) {
	input := "\ufeffEPA Facility ID,State\n100000013521,AK\n"
	headerCh := make(chan []string, 1)

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		StripBOM:  true,
	})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, []string{"EPA Facility ID", "State"}, <-headerCh)
	assert.Equal(t, []string{"100000013521", "AK"}, rows[0])
}

func TestStreamCSV_TrimSpace(t *testing.T) {
	input := " State , Latitude \n AK , 61.2 \n"
	headerCh := make(chan []string, 1)
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		TrimSpace: true,
		HasHeader: true,
		HeaderCh:  headerCh,
	})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"AK", "61.2"}, rows[0])
	assert.Equal(t, []string{"State", "Latitude"}, <-headerCh)
}

func TestStreamCSV_LazyQuotes(t *testing.T) {
	input := "name,state\nJoe \"Big\" Plant,TX\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		LazyQuotes: true,
	})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, `Joe "Big" Plant`, rows[1][0])
}

func TestStreamCSV_VariableFields(t *testing.T) {
	input := "a,b,c\n1,2\n3,4,5,6\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Len(t, rows[1], 2)
	assert.Len(t, rows[2], 4)
}

func TestStreamCSV_Empty(t *testing.T) {
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(""), CSVOptions{})
	rows, err := collectRows(t, rowCh, errCh)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

// failingReader returns failErr once failAt bytes have been read.
type failingReader struct {
	data    string
	pos     int
	failAt  int
	failErr error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.pos >= r.failAt {
		return 0, r.failErr
	}
	end := min(r.failAt, len(r.data))
	n := copy(p, r.data[r.pos:end])
	r.pos += n
	return n, nil
}

func TestStreamCSV_ReadError(t *testing.T) {
	r := &failingReader{data: "a,b,c\n1,2,3\n", failAt: 10, failErr: io.ErrClosedPipe}

	rowCh, errCh := StreamCSV(context.Background(), r, CSVOptions{})
	_, err := collectRows(t, rowCh, errCh)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: read row")
}

func TestStreamCSV_ContextCancellation(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("EPA Facility ID,State\n")
	for range 10000 {
		sb.WriteString("100000013521,AK\n")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rowCh, errCh := StreamCSV(ctx, strings.NewReader(sb.String()), CSVOptions{})

	count := 0
	for range rowCh {
		count++
		if count >= 5 {
			cancel()
			break
		}
	}
	for range rowCh { //nolint:revive // drain
	}

	var gotErr error
	for err := range errCh {
		if err != nil {
			gotErr = err
		}
	}
	// The goroutine may finish before noticing the cancel.
	if gotErr != nil {
		assert.Contains(t, gotErr.Error(), "context cancelled")
	}
}

func TestMapRow(t *testing.T) {
	headers := []string{"EPA Facility ID", "Chemical(s)", "NAICS Code(s)"}

	m := MapRow(headers, []string{"1000", "Ammonia", "325311"})
	assert.Equal(t, "1000", m["EPA Facility ID"])
	assert.Equal(t, "Ammonia", m["Chemical(s)"])
	assert.Equal(t, "325311", m["NAICS Code(s)"])

	short := MapRow(headers, []string{"1000"})
	assert.Equal(t, "", short["Chemical(s)"])
	assert.Len(t, short, 3)
}
