package models

// SyncData is the payload section of a sync request. Records are split into
// the three arrays the collection endpoint understands; Deleted carries
// provider-issued ids of samples removed at the source.
type SyncData struct {
	Records  []Record `json:"records"`
	Workouts []Record `json:"workouts"`
	Sleep    []Record `json:"sleep"`
	Deleted  []string `json:"deleted,omitempty"`
}

// SyncRequest is the body of POST /api/v1/sync.
type SyncRequest struct {
	Data       SyncData `json:"data"`
	FullExport bool     `json:"full_export,omitempty"`
}

// NewSyncRequest buckets the chunk's records by category into the wire
// shape expected by the collection endpoint.
func NewSyncRequest(chunk Chunk) SyncRequest {
	req := SyncRequest{
		Data: SyncData{
			Records:  make([]Record, 0, len(chunk.Records)),
			Workouts: []Record{},
			Sleep:    []Record{},
			Deleted:  chunk.DeletedIDs,
		},
		FullExport: chunk.FullExport,
	}

	for _, r := range chunk.Records {
		switch r.Type.Category() {
		case CategoryWorkout:
			req.Data.Workouts = append(req.Data.Workouts, r)
		case CategorySleep:
			req.Data.Sleep = append(req.Data.Sleep, r)
		default:
			req.Data.Records = append(req.Data.Records, r)
		}
	}

	return req
}

// Size returns the number of samples carried by the request.
func (r SyncRequest) Size() int {
	return len(r.Data.Records) + len(r.Data.Workouts) + len(r.Data.Sleep)
}

// SyncResponse is the body returned by the collection endpoint on success.
type SyncResponse struct {
	Accepted int `json:"accepted"`
}

// TokenRefreshRequest is the body of POST /api/v1/token/refresh.
type TokenRefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenRefreshResponse is the refresh endpoint's success body. A missing
// refresh_token means the old one stays valid.
type TokenRefreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}
