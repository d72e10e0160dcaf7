package actions

import (
	"context"
	"fmt"
	"sort"
	"time"

	st "github.com/showwin/speedtest-go/speedtest"

	logx "jarvis/pkg/logx"
)

// SpeedResult is the outcome of one network speed measurement.
type SpeedResult struct {
	DownloadMbps float64
	UploadMbps   float64
	PingMs       float64
	ISP          string
	ServerName   string
	Duration     time.Duration
}

func (r SpeedResult) String() string {
	return fmt.Sprintf("Download: %.1f Mbps\nUpload: %.1f Mbps\nPing: %.0f ms\nServer: %s\nISP: %s\nTook: %s",
		r.DownloadMbps, r.UploadMbps, r.PingMs, r.ServerName, r.ISP, r.Duration.Round(time.Second))
}

const speedTestCandidates = 5

// SpeedTest measures download and upload throughput against the
// lowest-latency nearby server. Slow: a full run takes tens of seconds.
func (s *Service) SpeedTest(ctx context.Context) (SpeedResult, error) {
	start := time.Now()

	// Avoid the package-level helpers; speedtest-go keeps state there.
	stc := st.New(st.WithUserConfig(&st.UserConfig{SavingMode: true, MaxConnections: 4}))
	defer func() {
		stc.Snapshots().Clean()
		stc.Reset()
	}()

	user, err := stc.FetchUserInfoContext(ctx)
	if err != nil {
		return SpeedResult{}, fmt.Errorf("fetch user info: %w", err)
	}
	servers, err := stc.FetchServerListContext(ctx)
	if err != nil {
		return SpeedResult{}, fmt.Errorf("fetch server list: %w", err)
	}
	if a := servers.Available(); a != nil {
		servers = *a
	}
	if len(servers) == 0 {
		return SpeedResult{}, fmt.Errorf("no servers available")
	}

	sort.Slice(servers, func(i, j int) bool { return servers[i].Distance < servers[j].Distance })
	n := speedTestCandidates
	if n > len(servers) {
		n = len(servers)
	}

	var best *st.Server
	for _, srv := range servers[:n] {
		if err := srv.PingTestContext(ctx, nil); err != nil || srv.Latency <= 0 {
			continue
		}
		if best == nil || srv.Latency < best.Latency {
			best = srv
		}
	}
	if best == nil {
		if err := ctx.Err(); err != nil {
			return SpeedResult{}, err
		}
		return SpeedResult{}, fmt.Errorf("all latency tests failed")
	}

	if err := best.DownloadTestContext(ctx); err != nil {
		return SpeedResult{}, fmt.Errorf("download test: %w", err)
	}
	if err := best.UploadTestContext(ctx); err != nil {
		return SpeedResult{}, fmt.Errorf("upload test: %w", err)
	}

	res := SpeedResult{
		DownloadMbps: best.DLSpeed.Mbps(),
		UploadMbps:   best.ULSpeed.Mbps(),
		PingMs:       float64(best.Latency.Milliseconds()),
		ISP:          user.Isp,
		ServerName:   best.Sponsor,
		Duration:     time.Since(start),
	}
	s.log.Info("speed test finished",
		logx.Float64("download_mbps", res.DownloadMbps),
		logx.Float64("upload_mbps", res.UploadMbps),
		logx.Float64("ping_ms", res.PingMs))
	return res, nil
}
