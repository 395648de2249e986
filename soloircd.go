package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/soloircd/soloircd/internal/config"
	"github.com/soloircd/soloircd/internal/ircserver"
	"github.com/soloircd/soloircd/internal/mux"
	"github.com/stapelberg/glog"

	_ "net/http/pprof"
)

// XXX: when introducing a new flag, you must add it to the flag.Usage function in main().
var (
	configPath = flag.String("config",
		"",
		"Path to a TOML configuration file. If empty, built-in defaults are used.")
	listenDebug = flag.String("listen_debug",
		"",
		`[host]:port to serve Prometheus metrics and a status page on (e.g. "localhost:6060"). Disabled if empty.`)

	ircServer *ircserver.IRCServer

	netConfig = config.DefaultConfig

	sessionsGauge = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Subsystem: "irc",
			Name:      "sessions",
			Help:      "Number of IRC sessions",
		},
		func() float64 {
			return float64(ircServer.NumSessions())
		},
	)

	channelsGauge = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Subsystem: "irc",
			Name:      "channels",
			Help:      "Number of IRC channels",
		},
		func() float64 {
			return float64(ircServer.NumChannels())
		},
	)
)

func init() {
	prometheus.MustRegister(sessionsGauge)
	prometheus.MustRegister(channelsGauge)
}

func printDefault(f *flag.Flag) {
	format := "  -%s=%s: %s\n"
	if getter, ok := f.Value.(flag.Getter); ok {
		if _, ok := getter.Get().(string); ok {
			// put quotes on the value
			format = "  -%s=%q: %s\n"
		}
	}
	fmt.Fprintf(os.Stderr, format, f.Name, f.DefValue, f.Usage)
}

func usage() {
	fmt.Fprintf(os.Stderr, "soloircd: a single-process IRC server\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "Usage: soloircd [flags] <port> <password>\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "<port> must lie within 1 to 65535, <password> must not be empty.\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "The following flags are optional:\n")
	printDefault(flag.Lookup("config"))
	printDefault(flag.Lookup("listen_debug"))
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "The following flags are optional and provided by glog:\n")
	printDefault(flag.Lookup("alsologtostderr"))
	printDefault(flag.Lookup("log_backtrace_at"))
	printDefault(flag.Lookup("log_dir"))
	printDefault(flag.Lookup("log_total_bytes"))
	printDefault(flag.Lookup("logtostderr"))
	printDefault(flag.Lookup("stderrthreshold"))
	printDefault(flag.Lookup("v"))
	printDefault(flag.Lookup("vmodule"))
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
	sessions := ircServer.GetSessions()
	ids := make([]uint64, 0, len(sessions))
	for id := range sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "soloircd (%s)\n", netConfig.Name)
	fmt.Fprintf(w, "%d sessions, %d channels\n\n", len(sessions), ircServer.NumChannels())
	for _, id := range ids {
		s := sessions[id]
		fmt.Fprintf(w, "session %d: nick=%q host=%q channels=%d last activity %v\n",
			id, s.Nick, s.Host, len(s.Channels), s.LastActivity)
	}
}

func main() {
	flag.Usage = usage
	flag.Parse()

	defer glog.Flush()
	glog.CopyStandardLogTo("INFO")

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	port, err := strconv.Atoi(flag.Arg(0))
	if err != nil || port < 1 || port > 65535 {
		flag.Usage()
		os.Exit(1)
	}
	password := flag.Arg(1)
	if password == "" {
		flag.Usage()
		os.Exit(1)
	}

	if *configPath != "" {
		netConfig, err = config.FromFile(*configPath)
		if err != nil {
			log.Fatalf("Could not load -config=%q: %v", *configPath, err)
		}
	}

	ircServer = ircserver.NewIRCServer(netConfig.Name, password, time.Now())
	ircServer.Config = netConfig

	if *listenDebug != "" {
		http.Handle("/metrics", promhttp.Handler())
		http.HandleFunc("/", statusHandler)
		go func() {
			if err := http.ListenAndServe(*listenDebug, nil); err != nil {
				glog.Errorf("-listen_debug: %v", err)
			}
		}()
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
	if err != nil {
		log.Fatalf("Could not listen on port %d: %v", port, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		s := <-sig
		glog.Infof("Received %v, shutting down", s)
		cancel()
	}()

	glog.Infof("soloircd listening on port %d (network %q)", port, netConfig.Name)
	if err := mux.New(ircServer, ln).Serve(ctx); err != nil {
		log.Fatal(err)
	}
}
