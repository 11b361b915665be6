package audit_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/idilettant/seoaudit/audit"
)

func TestBeginAdmitsOneSessionAtATime(t *testing.T) {
	t.Parallel()

	svc := newService(fixtureSite().client())

	first, err := svc.Begin()
	require.NoError(t, err)

	_, err = svc.Begin()
	require.ErrorIs(t, err, audit.ErrAuditInProgress)

	first.Close()
	first.Close()

	second, err := svc.Begin()
	require.NoError(t, err)
	second.Close()
}

func TestBeginUnderContention(t *testing.T) {
	t.Parallel()

	svc := newService(fixtureSite().client())

	var (
		wg      sync.WaitGroup
		winners  atomic.Int32
		attempts sync.WaitGroup
		start    = make(chan struct{})
		release  = make(chan struct{})
	)

	attempts.Add(16)

	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			session, err := svc.Begin()
			attempts.Done()
			if err != nil {
				return
			}
			winners.Add(1)
			<-release
			session.Close()
		}()
	}

	close(start)
	attempts.Wait()
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), winners.Load())
}

func TestClosedSessionRejectsWork(t *testing.T) {
	t.Parallel()

	svc := newService(fixtureSite().client())

	session, err := svc.Begin()
	require.NoError(t, err)
	session.Close()

	_, err = session.AuditPage(context.Background(), "https://example.com")
	require.ErrorIs(t, err, audit.ErrSessionClosed)

	_, err = session.Crawl(context.Background(), audit.CrawlRequest{URL: "https://example.com"}, nil)
	require.ErrorIs(t, err, audit.ErrSessionClosed)

	_, err = session.PreLaunch(context.Background(), audit.CrawlRequest{URL: "https://example.com"}, nil)
	require.ErrorIs(t, err, audit.ErrSessionClosed)
}

func TestReportKinds(t *testing.T) {
	t.Parallel()

	reports := []audit.Report{&audit.PageReport{}, &audit.SiteCrawlReport{}, &audit.PreLaunchReport{}}
	kinds := []audit.Kind{}
	for _, r := range reports {
		kinds = append(kinds, r.Kind())
	}

	require.Equal(t, []audit.Kind{audit.KindPage, audit.KindCrawl, audit.KindPreLaunch}, kinds)
}
