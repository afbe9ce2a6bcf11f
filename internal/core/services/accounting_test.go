package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clusterlink/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/clusterlink/internal/core/domain"
)

// clusterTable builds a table with one pillar and the given clusters.
func clusterTable(pillarID string, clusterIDs ...string) *domain.ProposalTable {
	table := domain.NewProposalTable()
	candidates := make([]domain.ClusterCandidate, 0, len(clusterIDs))
	for i, id := range clusterIDs {
		candidates = append(candidates, domain.ClusterCandidate{ClusterID: id, Score: len(clusterIDs) - i})
	}
	table.Set(pillarID, candidates)
	return table
}

func TestLinkAccountant_Budget(t *testing.T) {
	pillar := pillarDoc("1", "空調")
	pillar.Content = `<p>まず<a href="https://example.com/p/20">点検</a>、
次に<a href="/p/21/">修理</a>。<a href="https://other.example/">外部</a></p>`

	docs := memory.NewDocumentStore(
		pillar,
		clusterDoc("20", "点検", ""),
		clusterDoc("21", "修理", ""),
		clusterDoc("22", "費用", ""),
	)
	table := clusterTable("1", "20", "21", "22")
	a := NewLinkAccountant(docs, "https://example.com")

	budget, err := a.Budget(context.Background(), &pillar, table, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkBudget{Existing: 2, Max: 2, Remaining: 0}, budget)
	assert.True(t, budget.Exhausted())
}

func TestLinkAccountant_CountCappedAtMax(t *testing.T) {
	pillar := pillarDoc("1", "空調")
	pillar.Content = `<a href="https://example.com/p/20">a</a>
<a href="https://example.com/p/21">b</a>
<a href="https://example.com/p/22">c</a>`

	docs := memory.NewDocumentStore(
		pillar,
		clusterDoc("20", "点検", ""),
		clusterDoc("21", "修理", ""),
		clusterDoc("22", "費用", ""),
	)
	table := clusterTable("1", "20", "21", "22")
	a := NewLinkAccountant(docs, "https://example.com")

	n, err := a.CountExistingLinks(context.Background(), &pillar, table, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	budget, err := a.Budget(context.Background(), &pillar, table, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkBudget{Existing: 2, Max: 2, Remaining: 0}, budget)
	assert.LessOrEqual(t, budget.Existing, budget.Max)
}

func TestLinkAccountant_CountsDistinctMembers(t *testing.T) {
	pillar := pillarDoc("1", "空調")
	pillar.Content = `<a href="https://example.com/p/20">a</a>
<a href="https://EXAMPLE.com/p/20/#top">b</a>
<a href="https://example.com/p/1">self</a>
<a href="mailto:x@example.com">mail</a>`

	docs := memory.NewDocumentStore(pillar, clusterDoc("20", "点検", ""))
	a := NewLinkAccountant(docs, "https://example.com")

	n, err := a.CountExistingLinks(context.Background(), &pillar, clusterTable("1", "20"), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	budget, err := a.Budget(context.Background(), &pillar, clusterTable("1", "20"), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, budget.Remaining)
}

func TestLinkAccountant_LinksOutsideTableIgnored(t *testing.T) {
	doc := clusterDoc("30", "未提案", `<a href="https://example.com/p/31">x</a>`)
	docs := memory.NewDocumentStore(doc, clusterDoc("31", "別記事", ""))
	a := NewLinkAccountant(docs, "https://example.com")

	budget, err := a.Budget(context.Background(), &doc, domain.NewProposalTable(), 2)
	require.NoError(t, err)
	assert.Equal(t, domain.LinkBudget{Existing: 0, Max: 2, Remaining: 2}, budget)
}

func TestLinkAccountant_RelativeLinksUsePermalink(t *testing.T) {
	doc := clusterDoc("20", "点検", `<a href="1">親</a>`)
	docs := memory.NewDocumentStore(pillarDoc("1", "空調"), doc)
	a := NewLinkAccountant(docs, "")

	members, err := a.MemberURLs(context.Background(), clusterTable("1", "20"))
	require.NoError(t, err)
	linked, err := a.LinkedMembers(&doc, members)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, linked)
}

func TestLinkAccountant_MissingMemberSkipped(t *testing.T) {
	pillar := pillarDoc("1", "空調")
	docs := memory.NewDocumentStore(pillar)
	a := NewLinkAccountant(docs, "https://example.com")

	members, err := a.MemberURLs(context.Background(), clusterTable("1", "99"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"https://example.com/p/1": "1"}, members)
}

func TestLinkAccountant_StoreFailure(t *testing.T) {
	pillar := pillarDoc("1", "空調")
	docs := memory.NewDocumentStore(pillar)
	docs.Err = errors.New("connection refused")
	a := NewLinkAccountant(docs, "https://example.com")

	_, err := a.Budget(context.Background(), &pillar, clusterTable("1", "20"), 2)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
