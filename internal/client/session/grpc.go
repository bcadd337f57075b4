package session

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// UnaryClientInterceptor attaches the access credential to outgoing unary
// calls and, on codes.Unauthenticated, renews through the shared coordinator
// and retries once.
func (s *Session) UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		for attempt := 0; ; attempt++ {
			access := s.creds.Current().AccessToken

			err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
			if status.Code(err) != codes.Unauthenticated || attempt >= maxReplays {
				return err
			}

			if rerr := s.coord.Renew(ctx, access); rerr != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return status.FromContextError(ctxErr).Err()
				}
				return err
			}

			s.metrics.replay()
			s.logger.Debug(ctx, "retrying rpc after renewal", "method", method)
		}
	}
}

// withAccessToken replaces any authorization entry in the outgoing metadata.
func withAccessToken(ctx context.Context, access string) context.Context {
	key := strings.ToLower(common.AuthorizationHeaderName)

	md, ok := metadata.FromOutgoingContext(ctx)
	if ok {
		md = md.Copy()
	} else {
		md = metadata.MD{}
	}

	md.Delete(key)
	if access != "" {
		md.Set(key, common.BearerPrefix+access)
	}
	return metadata.NewOutgoingContext(ctx, md)
}
