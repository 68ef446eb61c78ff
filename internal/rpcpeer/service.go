package rpcpeer

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified grpc service name, matching
// api/chordpb/peer.proto's `chord.v1.Peer`.
const ServiceName = "chord.v1.Peer"

// PeerServer is implemented by anything that can answer the peer RPCs:
// the four ring operations of spec.md §4.6 plus StorePut/StoreGet. In
// this repository that is chord.PeerServerAdapter, which wraps a
// *chord.Node.
type PeerServer interface {
	FindSuccessor(ctx context.Context, req *FindSuccessorRequest) (*FindSuccessorResponse, error)
	GetPredecessor(ctx context.Context, req *Empty) (*GetPredecessorResponse, error)
	Notify(ctx context.Context, req *NotifyRequest) (*Empty, error)
	Ping(ctx context.Context, req *Empty) (*Empty, error)
	StorePut(ctx context.Context, req *StorePutRequest) (*Empty, error)
	StoreGet(ctx context.Context, req *StoreGetRequest) (*StoreGetResponse, error)
}

// PeerClient is the client-side stub for the Peer service.
type PeerClient interface {
	FindSuccessor(ctx context.Context, in *FindSuccessorRequest, opts ...grpc.CallOption) (*FindSuccessorResponse, error)
	GetPredecessor(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*GetPredecessorResponse, error)
	Notify(ctx context.Context, in *NotifyRequest, opts ...grpc.CallOption) (*Empty, error)
	Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error)
	StorePut(ctx context.Context, in *StorePutRequest, opts ...grpc.CallOption) (*Empty, error)
	StoreGet(ctx context.Context, in *StoreGetRequest, opts ...grpc.CallOption) (*StoreGetResponse, error)
}

type peerClient struct {
	cc grpc.ClientConnInterface
}

// NewPeerClient builds a PeerClient over an established connection.
func NewPeerClient(cc grpc.ClientConnInterface) PeerClient {
	return &peerClient{cc: cc}
}

func (c *peerClient) FindSuccessor(ctx context.Context, in *FindSuccessorRequest, opts ...grpc.CallOption) (*FindSuccessorResponse, error) {
	out := new(FindSuccessorResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/FindSuccessor", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *peerClient) GetPredecessor(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*GetPredecessorResponse, error) {
	out := new(GetPredecessorResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetPredecessor", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *peerClient) Notify(ctx context.Context, in *NotifyRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Notify", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *peerClient) Ping(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Ping", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *peerClient) StorePut(ctx context.Context, in *StorePutRequest, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/StorePut", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *peerClient) StoreGet(ctx context.Context, in *StoreGetRequest, opts ...grpc.CallOption) (*StoreGetResponse, error) {
	out := new(StoreGetResponse)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/StoreGet", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterPeerServer registers srv's implementation against s.
func RegisterPeerServer(s grpc.ServiceRegistrar, srv PeerServer) {
	s.RegisterService(&serviceDesc, srv)
}

func findSuccessorHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(FindSuccessorRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PeerServer).FindSuccessor(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/FindSuccessor"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PeerServer).FindSuccessor(ctx, req.(*FindSuccessorRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getPredecessorHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PeerServer).GetPredecessor(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetPredecessor"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PeerServer).GetPredecessor(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func notifyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(NotifyRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PeerServer).Notify(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Notify"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PeerServer).Notify(ctx, req.(*NotifyRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PeerServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Ping"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PeerServer).Ping(ctx, req.(*Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func storePutHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StorePutRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PeerServer).StorePut(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/StorePut"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PeerServer).StorePut(ctx, req.(*StorePutRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func storeGetHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(StoreGetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PeerServer).StoreGet(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/StoreGet"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PeerServer).StoreGet(ctx, req.(*StoreGetRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PeerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FindSuccessor", Handler: findSuccessorHandler},
		{MethodName: "GetPredecessor", Handler: getPredecessorHandler},
		{MethodName: "Notify", Handler: notifyHandler},
		{MethodName: "Ping", Handler: pingHandler},
		{MethodName: "StorePut", Handler: storePutHandler},
		{MethodName: "StoreGet", Handler: storeGetHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/chordpb/peer.proto",
}
