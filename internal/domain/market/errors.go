package market

import "errors"

// ErrInvalidWaypointSymbol rejects a market snapshot without a waypoint
var ErrInvalidWaypointSymbol = errors.New("market has no waypoint symbol")

// ErrInvalidTradeGood wraps every trade good validation failure
var ErrInvalidTradeGood = errors.New("invalid trade good")
