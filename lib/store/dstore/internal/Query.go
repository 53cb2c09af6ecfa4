package internal

// QueryType defines the possible queries for the state machine.
type QueryType uint8

const (
	QueryTGet       QueryType = iota // Retrieve an entry by key.
	QueryTMGet                       // Retrieve many entries at once.
	QueryTHas                        // Check if a key exists.
	QueryTScan                       // List all keys with a prefix.
	QueryTGetDBInfo                  // Retrieve metadata about the database underlying the machine.
)

func (q QueryType) String() string {
	switch q {
	case QueryTGet:
		return "Get"
	case QueryTMGet:
		return "MGet"
	case QueryTHas:
		return "Has"
	case QueryTScan:
		return "Scan"
	case QueryTGetDBInfo:
		return "GetDBInfo"
	default:
		return "Unknown"
	}
}

// Query defines the structure for lookup requests (read-only) sent via SyncRead or StaleRead
type Query struct {
	Type QueryType // The type of Query to perform.
	Key  string    // The key (Get, Has) or prefix (Scan).
	Keys []string  // The keys of an MGet.
}

// QueryResult is the result of a QueryTGet operation.
type QueryResult struct {
	Ok    bool
	Value []byte
}

// MultiQueryResult is the result of a QueryTMGet operation.
type MultiQueryResult struct {
	Oks    []bool
	Values [][]byte
}
