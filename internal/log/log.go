package log

const (
	// FldFile is the name of the log field for storing file name information
	FldFile = "file"
	// FldPath is the name of the log field for storing path name information
	FldPath = "path"
	// FldTransport is the name of the log field for storing a transport name
	FldTransport = "transport"
	// FldVersion is the version number of the application
	FldVersion = "ver"
	// FldID is the ID of an entity used in the log entry
	FldID = "id"
	// FldName is the name of an entity used in the log entry
	FldName = "name"
	// FldVenue is the ID of the venue a log entry is about
	FldVenue = "venue"
	// FldArtist is the ID of the artist a log entry is about
	FldArtist = "artist"
	// FldSearch is a search term used in a serach
	FldSearch = "search"
	// FldRequestID identifies a single HTTP request
	FldRequestID = "requestId"
	// FldMethod is the HTTP method of a request
	FldMethod = "method"
	// FldStatus is the HTTP status code of a response
	FldStatus = "status"
	// FldDuration is the time a request took
	FldDuration = "duration"
	// FldCacheKey is the key of a cached response
	FldCacheKey = "cacheKey"
	// FldDriver is the name of the database driver in use
	FldDriver = "driver"
)
