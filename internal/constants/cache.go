package constants

import "time"

// PagesCacheTTL is how long a fetched page listing stays valid.
const PagesCacheTTL = 5 * time.Minute
