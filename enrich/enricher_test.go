package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alpharomercoma/viableview-scraper/models"
)

type fakeDetailSource struct {
	html  string
	err   error
	calls int
}

func (f *fakeDetailSource) DetailHTML(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.html, f.err
}

const agentPage = `<html><body>
  <h2>Acme LLC</h2>
  <div class="card">
    <div class="small muted">Registered Agent</div>
    <div>Jordan Smith</div>
    <div class="muted">9 Agent Way</div>
    <div class="muted">Email: <code>jordan@acme.test</code></div>
  </div>
</body></html>`

func TestEnrich_EmptyIDSkipsDetailFetch(t *testing.T) {
	source := &fakeDetailSource{html: agentPage}
	e := NewEnricher(source)

	hit := models.SearchHit{
		BusinessName: "No ID Corp",
		AgentName:    "Casey Vo",
	}

	rec := e.Enrich(context.Background(), hit)

	assert.Zero(t, source.calls, "no id means no detail fetch")
	assert.Equal(t, "No ID Corp", rec.BusinessName)
	assert.Equal(t, "Casey Vo", rec.AgentName, "agent fields come from the hit itself")
	assert.Empty(t, rec.AgentEmail)
}

func TestEnrich_DetailFieldsWin(t *testing.T) {
	source := &fakeDetailSource{html: agentPage}
	e := NewEnricher(source)

	hit := models.SearchHit{
		ID:           "b-1",
		BusinessName: "Acme",
		Status:       "Active",
	}

	rec := e.Enrich(context.Background(), hit)

	assert.Equal(t, 1, source.calls)
	assert.Equal(t, "Acme LLC", rec.BusinessName)
	assert.Equal(t, "Active", rec.Status, "fields absent from the detail page keep the hit's value")
	assert.Equal(t, "Jordan Smith", rec.AgentName)
	assert.Equal(t, "9 Agent Way", rec.AgentAddress)
	assert.Equal(t, "jordan@acme.test", rec.AgentEmail)
}

func TestEnrich_NotFoundFallsBackToHit(t *testing.T) {
	source := &fakeDetailSource{
		err: models.NewCrawlError(models.KindDetailNotFound, "business b-1 not found", nil),
	}
	e := NewEnricher(source)

	hit := models.SearchHit{
		ID:           "b-1",
		BusinessName: "Acme LLC",
		Status:       "Active",
		FilingDate:   "2021-03-01",
	}

	rec := e.Enrich(context.Background(), hit)

	assert.Equal(t, "Acme LLC", rec.BusinessName)
	assert.Equal(t, "Active", rec.Status)
	assert.Equal(t, "2021-03-01", rec.FilingDate)
	assert.Empty(t, rec.AgentName)
	assert.Empty(t, rec.AgentAddress)
	assert.Empty(t, rec.AgentEmail)
}

func TestEnrich_UnexpectedFailureIsNeverFatal(t *testing.T) {
	source := &fakeDetailSource{err: errors.New("browser crashed")}
	e := NewEnricher(source)

	hit := models.SearchHit{ID: "b-2", BusinessName: "Beta Corp"}

	rec := e.Enrich(context.Background(), hit)

	assert.Equal(t, "Beta Corp", rec.BusinessName)
	assert.Empty(t, rec.AgentName)
}
