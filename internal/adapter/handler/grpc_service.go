package handler

import (
	"context"

	"github.com/goccy/go-json"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// CodecName is the content-subtype clients pass with grpc.CallContentSubtype.
const CodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec carries plain Go structs over gRPC so the service needs no
// generated protobuf code.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string { return CodecName }

type AddItemRequest struct {
	UserID       int64   `json:"user_id"`
	IngredientID int64   `json:"ingredient_id"`
	Amount       float64 `json:"amount"`
	Unit         string  `json:"unit"`
}

type ItemReply struct {
	UserID       int64   `json:"user_id"`
	IngredientID int64   `json:"ingredient_id"`
	Amount       float64 `json:"amount"`
	Unit         string  `json:"unit"`
	Done         bool    `json:"done,omitempty"`
	Version      int     `json:"version"`
}

type ListMakeableRequest struct {
	UserID int64 `json:"user_id"`
}

// ListQuasiRequest leaves MaxMissing nil to use the configured default.
type ListQuasiRequest struct {
	UserID     int64 `json:"user_id"`
	MaxMissing *int  `json:"max_missing,omitempty"`
}

type CocktailReply struct {
	CocktailID         int64    `json:"cocktail_id"`
	Name               string   `json:"name"`
	MissingIngredients []string `json:"missing_ingredients"`
	MissingCount       int      `json:"missing_count"`
	TotalCount         int      `json:"total_count"`
	PossessionRatio    float64  `json:"possession_ratio"`
}

type CocktailListReply struct {
	Cocktails []CocktailReply `json:"cocktails"`
}

// PantryServer is the server API for the cocktails.v1.Pantry service.
type PantryServer interface {
	AddToStock(context.Context, *AddItemRequest) (*ItemReply, error)
	AddToShoppingList(context.Context, *AddItemRequest) (*ItemReply, error)
	ListMakeable(context.Context, *ListMakeableRequest) (*CocktailListReply, error)
	ListQuasiRealizable(context.Context, *ListQuasiRequest) (*CocktailListReply, error)
}

func RegisterPantryServer(s grpc.ServiceRegistrar, srv PantryServer) {
	s.RegisterService(&pantryServiceDesc, srv)
}

const pantryServiceName = "cocktails.v1.Pantry"

var pantryServiceDesc = grpc.ServiceDesc{
	ServiceName: pantryServiceName,
	HandlerType: (*PantryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "AddToStock", Handler: unaryHandler(PantryServer.AddToStock, "AddToStock")},
		{MethodName: "AddToShoppingList", Handler: unaryHandler(PantryServer.AddToShoppingList, "AddToShoppingList")},
		{MethodName: "ListMakeable", Handler: unaryHandler(PantryServer.ListMakeable, "ListMakeable")},
		{MethodName: "ListQuasiRealizable", Handler: unaryHandler(PantryServer.ListQuasiRealizable, "ListQuasiRealizable")},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cocktails/v1/pantry.proto",
}

func unaryHandler[Req, Resp any](call func(PantryServer, context.Context, *Req) (*Resp, error), method string) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PantryServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + pantryServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PantryServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// PantryClient calls the Pantry service with the JSON codec.
type PantryClient struct {
	cc grpc.ClientConnInterface
}

func NewPantryClient(cc grpc.ClientConnInterface) *PantryClient {
	return &PantryClient{cc: cc}
}

func (c *PantryClient) AddToStock(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*ItemReply, error) {
	out := new(ItemReply)
	return out, c.invoke(ctx, "AddToStock", in, out, opts)
}

func (c *PantryClient) AddToShoppingList(ctx context.Context, in *AddItemRequest, opts ...grpc.CallOption) (*ItemReply, error) {
	out := new(ItemReply)
	return out, c.invoke(ctx, "AddToShoppingList", in, out, opts)
}

func (c *PantryClient) ListMakeable(ctx context.Context, in *ListMakeableRequest, opts ...grpc.CallOption) (*CocktailListReply, error) {
	out := new(CocktailListReply)
	return out, c.invoke(ctx, "ListMakeable", in, out, opts)
}

func (c *PantryClient) ListQuasiRealizable(ctx context.Context, in *ListQuasiRequest, opts ...grpc.CallOption) (*CocktailListReply, error) {
	out := new(CocktailListReply)
	return out, c.invoke(ctx, "ListQuasiRealizable", in, out, opts)
}

func (c *PantryClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+pantryServiceName+"/"+method, in, out, opts...)
}
