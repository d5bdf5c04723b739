// Command ember-server listens on a TCP socket and dispatches line-oriented
// get/put/delete commands against an embedded ember engine, mirroring
// original_source/cauchy/server.py's Node.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emberkv/ember/internal/protocol"
	"github.com/emberkv/ember/pkg/ember"
	"github.com/emberkv/ember/pkg/emberrors"
	"github.com/emberkv/ember/pkg/logger"
	"github.com/emberkv/ember/pkg/options"
	"github.com/emberkv/ember/pkg/value"
)

// connectionReadTimeout matches original_source/src/server.py's
// socket.settimeout(3600): an idle connection is dropped after an hour.
const connectionReadTimeout = time.Hour

// recvBufferSize matches spec.md §6: the server reads up to 1024 bytes
// per receive and treats each receive as one command.
const recvBufferSize = 1024

func main() {
	host := flag.String("host", "127.0.0.1", "address to listen on")
	port := flag.Int("port", 65432, "port to listen on")
	storageDir := flag.String("storage-dir", options.DefaultStorageDir, "directory for segment files")
	memtableMaxBytes := flag.Uint64("memtable-max-bytes", options.DefaultMemtableMaxBytes, "memtable flush threshold in bytes")
	blockSizeBytes := flag.Uint64("block-size-bytes", options.DefaultBlockSizeBytes, "segment sparse-index block size in bytes")
	mergeIntervalSecs := flag.Float64("merge-interval-secs", options.DefaultMergeInterval.Seconds(), "background compaction interval in seconds")
	flag.Parse()

	log := logger.New("ember-server")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	inst, err := ember.NewInstance(ctx, "ember-server",
		options.WithStorageDir(*storageDir),
		options.WithMemtableMaxBytes(*memtableMaxBytes),
		options.WithBlockSizeBytes(*blockSizeBytes),
		options.WithMergeInterval(time.Duration(*mergeIntervalSecs*float64(time.Second))),
	)
	if err != nil {
		log.Fatalw("failed to open storage engine", "error", err)
	}
	defer inst.Close(ctx)

	addr := net.JoinHostPort(*host, strconv.Itoa(*port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		bindErr := emberrors.NewEngineError(err, emberrors.ErrorCodeBind, "failed to bind listening socket").
			WithOperation("Listen").
			WithDetail("addr", addr)
		log.Errorw("server startup failed", "error", bindErr)
		os.Exit(1)
	}
	defer listener.Close()

	log.Infow("server listening", "addr", addr, "storageDir", *storageDir)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	acceptLoop(ctx, listener, inst, log)
	log.Infow("server shut down")
}

func acceptLoop(ctx context.Context, listener net.Listener, inst *ember.Instance, log *zap.SugaredLogger) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warnw("accept failed", "error", err)
			continue
		}
		go handleConnection(conn, inst, log)
	}
}

// engineAdapter binds an ember.Instance to a fixed context so it
// satisfies protocol.Engine, which has no context parameter — the wire
// protocol has no notion of per-command cancellation.
type engineAdapter struct {
	inst *ember.Instance
	ctx  context.Context
}

func (a engineAdapter) Get(key string) (value.Value, bool, error) { return a.inst.Get(a.ctx, key) }
func (a engineAdapter) Put(key string, v value.Value) error       { return a.inst.Put(a.ctx, key, v) }
func (a engineAdapter) Delete(key string) error                   { return a.inst.Delete(a.ctx, key) }

func handleConnection(conn net.Conn, inst *ember.Instance, log *zap.SugaredLogger) {
	connID := uuid.NewString()
	defer conn.Close()

	log.Infow("connection opened", "connID", connID, "remoteAddr", conn.RemoteAddr().String())

	adapter := engineAdapter{inst: inst, ctx: context.Background()}
	buf := make([]byte, recvBufferSize)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(connectionReadTimeout)); err != nil {
			log.Warnw("failed to set read deadline", "connID", connID, "error", err)
			return
		}

		n, err := conn.Read(buf)
		if err != nil {
			log.Infow("connection closed", "connID", connID, "reason", err.Error())
			return
		}

		command := strings.TrimRight(string(buf[:n]), "\r\n")
		if strings.EqualFold(command, "exit") {
			log.Infow("connection closed by client exit", "connID", connID)
			return
		}

		reply := protocol.Dispatch(adapter, command)
		if _, err := conn.Write([]byte(reply)); err != nil {
			log.Warnw("connection write error", "connID", connID, "error", err)
			return
		}
	}
}
