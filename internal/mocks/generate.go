package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name ScoreRepository --dir ../domain/match --output domain/match --outpkg matchmock --filename score_repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name LiveScoreProvider --dir ../usecase --output usecase --outpkg usecasemock --filename live_score_provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Notifier --dir ../usecase --output usecase --outpkg usecasemock --filename notifier_mock.go
