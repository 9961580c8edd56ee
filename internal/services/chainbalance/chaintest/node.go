// Package chaintest 提供一个用 httptest 模拟的 Solana JSON-RPC 节点，供各包测试复用。
package chaintest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"
)

// Node 是最小的假节点，只实现 getBalance 与 getMultipleAccounts。
//
// Accounts 中不存在的地址：getBalance 返回 0，getMultipleAccounts 返回 null，
// 与真实节点对未开户地址的表现一致。
type Node struct {
	*httptest.Server

	mu       sync.Mutex
	accounts map[string]uint64
	failing  map[string]bool
	delays   map[string]time.Duration
	failAll  bool

	balanceCalls atomic.Int64
	batchCalls   atomic.Int64
	lastBatch    []string
}

// NewNode 启动假节点，调用方负责 Close。
func NewNode(accounts map[string]uint64) *Node {
	n := &Node{
		accounts: map[string]uint64{},
		failing:  map[string]bool{},
		delays:   map[string]time.Duration{},
	}
	for k, v := range accounts {
		n.accounts[k] = v
	}
	n.Server = httptest.NewServer(http.HandlerFunc(n.serve))
	return n
}

// Fail 让针对 addr 的 getBalance 返回 JSON-RPC 错误。
func (n *Node) Fail(addr string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failing[addr] = true
}

// FailAll 让所有请求返回 JSON-RPC 错误。
func (n *Node) FailAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failAll = true
}

// Delay 让针对 addr 的 getBalance 延迟返回，用于打乱完成顺序。
func (n *Node) Delay(addr string, d time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.delays[addr] = d
}

// BalanceCalls 返回收到的 getBalance 次数。
func (n *Node) BalanceCalls() int { return int(n.balanceCalls.Load()) }

// BatchCalls 返回收到的 getMultipleAccounts 次数。
func (n *Node) BatchCalls() int { return int(n.batchCalls.Load()) }

// Calls 返回全部请求次数。
func (n *Node) Calls() int { return n.BalanceCalls() + n.BatchCalls() }

// LastBatch 返回最近一次 getMultipleAccounts 请求中的地址顺序。
func (n *Node) LastBatch() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.lastBatch...)
}

type rpcReq struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

type rpcContext struct {
	Slot uint64 `json:"slot"`
}

func (n *Node) serve(w http.ResponseWriter, r *http.Request) {
	var req rpcReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	id := req.ID
	if len(id) == 0 {
		id = json.RawMessage("1")
	}

	n.mu.Lock()
	failAll := n.failAll
	n.mu.Unlock()
	if failAll {
		writeError(w, id, -32005, "node is unhealthy")
		return
	}

	switch req.Method {
	case "getBalance":
		n.balanceCalls.Add(1)
		var addr string
		if len(req.Params) > 0 {
			_ = json.Unmarshal(req.Params[0], &addr)
		}
		n.mu.Lock()
		fail := n.failing[addr]
		delay := n.delays[addr]
		lamports := n.accounts[addr]
		n.mu.Unlock()
		if delay > 0 {
			time.Sleep(delay)
		}
		if fail {
			writeError(w, id, -32602, "Invalid param: could not find account")
			return
		}
		writeResult(w, id, map[string]any{
			"context": rpcContext{Slot: 1},
			"value":   lamports,
		})

	case "getMultipleAccounts":
		n.batchCalls.Add(1)
		var addrs []string
		if len(req.Params) > 0 {
			_ = json.Unmarshal(req.Params[0], &addrs)
		}
		n.mu.Lock()
		n.lastBatch = append([]string(nil), addrs...)
		values := make([]any, 0, len(addrs))
		for _, a := range addrs {
			lamports, ok := n.accounts[a]
			if !ok {
				values = append(values, nil)
				continue
			}
			values = append(values, map[string]any{
				"lamports":   lamports,
				"owner":      "11111111111111111111111111111111",
				"data":       []string{"", "base64"},
				"executable": false,
				"rentEpoch":  0,
				"space":      0,
			})
		}
		n.mu.Unlock()
		writeResult(w, id, map[string]any{
			"context": rpcContext{Slot: 1},
			"value":   values,
		})

	default:
		writeError(w, id, -32601, "Method not found")
	}
}

func writeResult(w http.ResponseWriter, id json.RawMessage, result any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}

func writeError(w http.ResponseWriter, id json.RawMessage, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   map[string]any{"code": code, "message": msg},
	})
}
