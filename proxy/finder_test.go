package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listPageWithTbody = `<html><body>
<table id="proxylisttable">
  <thead><tr><th>IP</th><th>Port</th><th>Code</th><th>Country</th><th>Anonymity</th><th>Google</th><th>Https</th></tr></thead>
  <tbody>
    <tr><td>10.0.0.1</td><td>8080</td><td>US</td><td>United States</td><td>elite proxy</td><td>no</td><td>yes</td></tr>
    <tr><td>10.0.0.2</td><td>3128</td><td>DE</td><td>Germany</td><td>anonymous</td><td>no</td><td>no</td></tr>
    <tr><td>10.0.0.3</td><td>80</td><td>FR</td><td>France</td><td>transparent</td><td>no</td><td>no</td></tr>
  </tbody>
</table>
</body></html>`

const listPageNoTbody = `<html><body>
<table class="table">
  <tr><th>IP</th><th>Port</th><th>Code</th><th>Country</th><th>Anonymity</th><th>Google</th><th>Https</th></tr>
  <tr><td>10.0.0.1</td><td>8080</td><td>US</td><td>United States</td><td>elite proxy</td><td>no</td><td>yes</td></tr>
  <tr><td>10.0.0.2</td><td>3128</td><td>DE</td><td>Germany</td><td>anonymous</td><td>no</td><td>no</td></tr>
</table>
</body></html>`

func TestParseList(t *testing.T) {
	candidates, err := parseList(listPageWithTbody, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	assert.Equal(t, Candidate{
		IP: "10.0.0.1", Port: "8080", Code: "US",
		Country: "United States", Anonymity: "elite proxy", HTTPS: "yes",
	}, candidates[0])
	assert.Equal(t, "10.0.0.2", candidates[1].IP)
	assert.Equal(t, "transparent", candidates[2].Anonymity)
}

func TestParseList_NoTbodySkipsHeader(t *testing.T) {
	candidates, err := parseList(listPageNoTbody, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "10.0.0.1", candidates[0].IP)
}

func TestParseList_HonorsMax(t *testing.T) {
	candidates, err := parseList(listPageWithTbody, 2)
	require.NoError(t, err)
	assert.Len(t, candidates, 2)
}

func TestParseList_NoTable(t *testing.T) {
	_, err := parseList("<html><body><p>maintenance</p></body></html>", 10)
	assert.Error(t, err)
}

func TestParseList_SkipsIncompleteRows(t *testing.T) {
	page := `<table><tbody>
	  <tr><td colspan="7">advert</td></tr>
	  <tr><td>10.0.0.9</td><td>8080</td><td>US</td><td>US</td><td>elite</td><td>no</td><td>no</td></tr>
	</tbody></table>`
	candidates, err := parseList(page, 10)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "10.0.0.9", candidates[0].IP)
}

func TestCandidateURL(t *testing.T) {
	assert.Equal(t, "https://10.0.0.1:8080", Candidate{IP: "10.0.0.1", Port: "8080", HTTPS: "yes"}.URL())
	assert.Equal(t, "http://10.0.0.2:3128", Candidate{IP: "10.0.0.2", Port: "3128", HTTPS: "no"}.URL())
	assert.Equal(t, "https://10.0.0.3:80", Candidate{IP: "10.0.0.3", Port: "80", HTTPS: " Yes "}.URL())
}

func TestCandidateScore(t *testing.T) {
	httpsElite := Candidate{HTTPS: "yes", Anonymity: "elite proxy"}
	httpsAnon := Candidate{HTTPS: "yes", Anonymity: "anonymous"}
	plain := Candidate{HTTPS: "no", Anonymity: "transparent"}

	assert.Equal(t, 15, httpsElite.score())
	assert.Equal(t, 12, httpsAnon.score())
	assert.Equal(t, 0, plain.score())
	assert.Greater(t, httpsElite.score(), httpsAnon.score())
	assert.Greater(t, httpsAnon.score(), plain.score())
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "Blocked", extractTitle([]byte(`<html><head><title>Blocked</title></head></html>`)))
	assert.Equal(t, "", extractTitle([]byte(`{"origin": "10.0.0.1"}`)))
}
