package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hamed0406/sitewatch/internal/probe"
)

func main() {
	raw := ""
	if len(os.Args) > 1 {
		raw = os.Args[1]
	} else {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Enter a site URL to check (e.g., https://example.com): ")
		raw, _ = reader.ReadString('\n')
	}
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		fmt.Println("Invalid URL.")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	res, err := probe.NewHTTPChecker(10*time.Second).Check(ctx, raw)
	fmt.Printf("%s  %s  status=%d  latency=%.2fms\n", res.Status(), raw, res.StatusCode, res.LatencyMS)

	if err != nil {
		fmt.Println("fault:", err)
		var f *probe.Fault
		if errors.As(err, &f) && f.Kind == probe.FaultConnection {
			dns := probe.DiagnoseDNS(ctx, probe.HostOf(raw))
			fmt.Printf("dns: %s %v\n", dns.Class, dns.Nameservers)
		}
	}
	if !res.Reachable {
		os.Exit(1)
	}
}
