package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/game --output domain/game --outpkg gamemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name StarterRepository --dir ../domain/goalie --output domain/goalie --outpkg goaliemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name ChartRepository --dir ../domain/division --output domain/division --outpkg divisionmock --filename repository_mock.go
