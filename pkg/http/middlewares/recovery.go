package middlewares

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/gitpulse-io/gitpulse/db/dao"
	"github.com/gitpulse-io/gitpulse/pkg/types"
	"go.uber.org/zap"
)

func PanicRecovery(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if e := recover(); e != nil {
				var err error
				switch v := e.(type) {
				case error:
					err = v
				default:
					err = errors.New(fmt.Sprint(e))
				}

				if errors.Is(err, dao.ErrConstraintViolation) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(409)
					bytes, _ := json.Marshal(types.ErrorResponse{Message: err.Error()})
					_, _ = w.Write(bytes)
					return
				}

				buf := make([]byte, 2048)
				n := runtime.Stack(buf, false)
				buf = buf[:n]

				zap.S().Errorf("panic recovered: %v\n %s", err, buf)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(500)
				_, _ = w.Write([]byte(`{"message": "internal error"}`))
			}
		}()

		h.ServeHTTP(w, r)
	})
}
