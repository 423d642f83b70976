package main

import "github.com/Atypix/Smart100-sub002/internal/types"

// ReportLoadedMsg carries a run report loaded from disk.
type ReportLoadedMsg struct {
	Report types.RunReport
}

// LoadErrorMsg indicates that a run report could not be read.
type LoadErrorMsg struct {
	Err error
}
