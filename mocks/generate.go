package mocks

//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/Atypix/Smart100-sub002/internal/datasource BarSource
