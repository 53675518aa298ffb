package fiscal

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-plugin"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/troncosounlar-bit/legasync-flow/internal/billing/domain"
)

// HandshakeConfig must match between the host and every fiscal plugin.
var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "LEGASYNC_FISCAL_PLUGIN",
	MagicCookieValue: "legasync-fiscal-v1",
}

// PluginName is the key the validator is dispensed under.
const PluginName = "fiscal"

// PluginMap returns the plugin set served and consumed by the host. impl is
// only needed on the plugin side.
func PluginMap(impl domain.FiscalValidator) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{PluginName: &GRPCPlugin{Impl: impl}}
}

// Serve runs impl as a fiscal plugin. It blocks until the host kills the
// process.
func Serve(impl domain.FiscalValidator) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins:         PluginMap(impl),
		GRPCServer:      plugin.DefaultGRPCServer,
	})
}

// GRPCPlugin exposes a FiscalValidator over go-plugin's gRPC transport.
type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	// Impl is the plugin-side implementation.
	Impl domain.FiscalValidator
}

var _ plugin.GRPCPlugin = (*GRPCPlugin)(nil)

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, s *grpc.Server) error {
	if p.Impl == nil {
		return errors.New("fiscal plugin has no implementation")
	}
	s.RegisterService(&authorityServiceDesc, &authorityServer{impl: p.Impl})
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return &RemoteValidator{conn: conn}, nil
}

const (
	authorityService = "legasync.fiscal.v1.FiscalAuthority"
	validateMethod   = "/" + authorityService + "/Validate"
)

// AuthorityServer is the server side of the FiscalAuthority service.
type AuthorityServer interface {
	Validate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var authorityServiceDesc = grpc.ServiceDesc{
	ServiceName: authorityService,
	HandlerType: (*AuthorityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Validate", Handler: validateHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "legasync/fiscal/v1/fiscal.proto",
}

func validateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuthorityServer).Validate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: validateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AuthorityServer).Validate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type authorityServer struct {
	impl domain.FiscalValidator
}

func (s *authorityServer) Validate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	token, err := s.impl.Validate(ctx, req)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrFiscalRejected):
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrFiscalUnavailable):
		return nil, status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, status.FromContextError(err).Err()
	default:
		return nil, status.Error(codes.Internal, err.Error())
	}

	return structpb.NewStruct(map[string]any{"token": string(token)})
}

// RemoteValidator is the host side of a fiscal plugin.
type RemoteValidator struct {
	conn *grpc.ClientConn
}

var _ domain.FiscalValidator = (*RemoteValidator)(nil)

// Validate asks the plugin process to authorise req.
func (v *RemoteValidator) Validate(ctx context.Context, req domain.FiscalRequest) (domain.FiscalToken, error) {
	in, err := encodeRequest(req)
	if err != nil {
		return "", err
	}

	out := new(structpb.Struct)
	if err := v.conn.Invoke(ctx, validateMethod, in, out); err != nil {
		return "", fromStatus(err)
	}

	token := out.GetFields()["token"].GetStringValue()
	if token == "" {
		return "", fmt.Errorf("%w: empty token", domain.ErrFiscalRejected)
	}
	return domain.FiscalToken(token), nil
}

func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %v", domain.ErrFiscalUnavailable, err)
	}
	switch st.Code() {
	case codes.FailedPrecondition, codes.InvalidArgument:
		return fmt.Errorf("%w: %s", domain.ErrFiscalRejected, st.Message())
	case codes.Canceled:
		return context.Canceled
	case codes.DeadlineExceeded:
		return context.DeadlineExceeded
	default:
		return fmt.Errorf("%w: %s", domain.ErrFiscalUnavailable, st.Message())
	}
}

func encodeRequest(req domain.FiscalRequest) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(map[string]any{
		"subscription_id": req.SubscriptionID.String(),
		"customer_id":     req.CustomerID.String(),
		"customer_name":   req.CustomerName,
		"amount":          req.Amount.String(),
		"currency":        req.Currency,
		"billing_period":  req.BillingPeriod,
	})
	if err != nil {
		return nil, fmt.Errorf("encode fiscal request: %w", err)
	}
	return s, nil
}

func decodeRequest(in *structpb.Struct) (domain.FiscalRequest, error) {
	fields := in.GetFields()
	str := func(key string) string { return fields[key].GetStringValue() }

	subID, err := uuid.Parse(str("subscription_id"))
	if err != nil {
		return domain.FiscalRequest{}, fmt.Errorf("subscription_id: %w", err)
	}
	customerID, err := uuid.Parse(str("customer_id"))
	if err != nil {
		return domain.FiscalRequest{}, fmt.Errorf("customer_id: %w", err)
	}
	amount, err := decimal.NewFromString(str("amount"))
	if err != nil {
		return domain.FiscalRequest{}, fmt.Errorf("amount: %w", err)
	}

	return domain.FiscalRequest{
		SubscriptionID: subID,
		CustomerID:     customerID,
		CustomerName:   str("customer_name"),
		Amount:         amount,
		Currency:       str("currency"),
		BillingPeriod:  str("billing_period"),
	}, nil
}
