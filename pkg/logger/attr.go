package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Plan records a plan slug under the key "plan".
func Plan(slug string) slog.Attr {
	return slog.String("plan", slug)
}

// Gateway records a payment gateway identifier under the key "gateway".
func Gateway(id string) slog.Attr {
	return slog.String("gateway", id)
}

// Currency records an ISO currency code under the key "currency".
func Currency(code string) slog.Attr {
	return slog.String("currency", code)
}

// Amount records a fixed-point amount under the key "amount".
func Amount(v int64) slog.Attr {
	return slog.Int64("amount", v)
}

// Phase records a checkout phase under the key "phase".
func Phase(p any) slog.Attr {
	return slog.Any("phase", p)
}

// SessionID records the checkout session identifier under the key "session_id".
// If id is nil, it returns an empty Attr.
func SessionID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("session_id", id)
}
