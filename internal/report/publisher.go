package report

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/andresuchdata/stockcast/internal/storage"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const reportPrefix = "reports"

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Publisher uploads rendered workbooks to object storage under
// reports/<date>/<name>.xlsx.
type Publisher struct {
	store storage.ObjectStorage
}

func NewPublisher(store storage.ObjectStorage) *Publisher {
	return &Publisher{store: store}
}

// ObjectKey returns the storage key of a report generated at the given time.
func ObjectKey(generatedAt time.Time, name string) string {
	name = strings.Trim(unsafeName.ReplaceAllString(name, "-"), "-")
	if name == "" {
		name = "report"
	}
	return path.Join(reportPrefix, generatedAt.Format(dateLayout), name+".xlsx")
}

// PublishForecast uploads the workbook of a product forecast and returns its key.
func (p *Publisher) PublishForecast(ctx context.Context, pf *domain.ProductForecast) (string, error) {
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, pf); err != nil {
		return "", err
	}

	key := ObjectKey(pf.GeneratedAt, "forecast-"+productLabel(pf.Product))
	return key, p.upload(ctx, key, buf.Bytes())
}

// PublishOverview uploads the workbook of a demand overview and returns its key.
func (p *Publisher) PublishOverview(ctx context.Context, overview *domain.DemandOverview) (string, error) {
	var buf bytes.Buffer
	if err := WriteOverviewWorkbook(&buf, overview); err != nil {
		return "", err
	}

	key := ObjectKey(overview.GeneratedAt, fmt.Sprintf("demand-overview-%dd", overview.PeriodDays))
	return key, p.upload(ctx, key, buf.Bytes())
}

func (p *Publisher) upload(ctx context.Context, key string, data []byte) error {
	if err := p.store.UploadObject(ctx, key, data, ContentType); err != nil {
		return errors.Wrapf(err, "report: failed to publish %s", key)
	}
	log.Info().Str("key", key).Int("bytes", len(data)).Msg("report published")
	return nil
}
