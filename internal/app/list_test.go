package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	procmanv1 "procman/api/procman/v1"
	"procman/internal/proc"
	"procman/internal/query"
)

func TestAppListRejectsInvalidSortKey(t *testing.T) {
	app := New(Options{})
	_, err := app.List(context.Background(), ListParams{Sort: "colour", Timeout: time.Second})
	if !errors.Is(err, query.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestAppListDaemonNotRunning(t *testing.T) {
	stubDaemon(t, false, nil)
	app := New(Options{})
	_, err := app.List(context.Background(), ListParams{Timeout: time.Second})
	if err == nil || err.Error() != "daemon is not running" {
		t.Fatalf("expected daemon not running error, got %v", err)
	}
}

func TestAppListSendsFilters(t *testing.T) {
	stubConn(t, func(method string, args, reply *structpb.Struct) error {
		if method != procmanv1.MethodQuery {
			t.Fatalf("unexpected method %s", method)
		}
		req := decodeArgs[procmanv1.QueryRequest](t, args)
		if req.Name != "ssh" || req.Owner != "root" || req.Sort != "cpu" {
			t.Fatalf("unexpected request: %+v", req)
		}
		respond(t, reply, procmanv1.QueryResponse{Processes: []proc.Record{
			{PID: 10, Name: "sshd", Owner: "root", CPUPercent: 2.5, MemoryKB: 4096},
		}})
		return nil
	})

	app := New(Options{})
	records, err := app.List(context.Background(), ListParams{Name: "ssh", Owner: " root ", Sort: "CPU", Timeout: time.Second})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 1 || records[0].PID != 10 || records[0].MemoryKB != 4096 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestAppListRPCError(t *testing.T) {
	stubConn(t, func(string, *structpb.Struct, *structpb.Struct) error {
		return errors.New("boom")
	})
	app := New(Options{})
	_, err := app.List(context.Background(), ListParams{Timeout: time.Second})
	if err == nil || !strings.Contains(err.Error(), "daemon query RPC failed: boom") {
		t.Fatalf("expected wrapped RPC error, got %v", err)
	}
}

func TestAppListAndTreeLocal(t *testing.T) {
	stubLocal(t,
		proc.Record{PID: 1, Name: "init"},
		proc.Record{PID: 2, Name: "bash", ParentPID: 1, HasParent: true, MemoryKB: 10},
		proc.Record{PID: 3, Name: "vim", ParentPID: 2, HasParent: true, MemoryKB: 30},
	)
	app := New(Options{Local: true})

	records, err := app.List(context.Background(), ListParams{Sort: "memory"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 3 || records[0].PID != 3 {
		t.Fatalf("unexpected order: %+v", records)
	}

	roots, err := app.Tree(context.Background(), TreeParams{})
	if err != nil {
		t.Fatalf("Tree returned error: %v", err)
	}
	if len(roots) != 1 || query.Count(roots) != 3 {
		t.Fatalf("unexpected forest: %+v", roots)
	}
}
