// Package rpcpeer implements the peer RPC surface of spec.md §4.6/§6
// (FindSuccessor, GetPredecessor, Notify, Ping) as a grpc service. The
// message shapes match api/chordpb/peer.proto; see DESIGN.md for why
// this package encodes them as JSON instead of protoc-generated
// protobuf.
package rpcpeer

// NodeRefMsg is the wire form of a domain.NodeRef. An absent NodeRef
// (no predecessor) is encoded as the zero value: empty Id and Addr.
type NodeRefMsg struct {
	Id   string `json:"id"`
	Addr string `json:"addr"`
}

func (m NodeRefMsg) isAbsent() bool {
	return m.Id == "" && m.Addr == ""
}

// FindSuccessorRequest asks the receiving node to resolve the node
// responsible for TargetID.
type FindSuccessorRequest struct {
	TargetID string `json:"target_id"`
}

// FindSuccessorResponse carries the resolved successor.
type FindSuccessorResponse struct {
	Node NodeRefMsg `json:"node"`
}

// GetPredecessorResponse carries the receiver's predecessor, or the
// absent marker if it has none.
type GetPredecessorResponse struct {
	Node NodeRefMsg `json:"node"`
}

// NotifyRequest tells the receiver that Node believes it may be the
// receiver's predecessor.
type NotifyRequest struct {
	Node NodeRefMsg `json:"node"`
}

// Empty carries no data; used for Ping and as the Notify/request type
// for GetPredecessor.
type Empty struct{}

// StorePutRequest asks the receiving node to store value under key in
// its local kvstore. The sender has already resolved the receiver as
// the key's owner via find_successor.
type StorePutRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// StoreGetRequest asks the receiving node for the value it holds
// locally under key.
type StoreGetRequest struct {
	Key string `json:"key"`
}

// StoreGetResponse carries the receiver's local value for a key, and
// whether it was present.
type StoreGetResponse struct {
	Value string `json:"value"`
	Found bool   `json:"found"`
}
