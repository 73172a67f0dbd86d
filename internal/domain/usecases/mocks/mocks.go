//go:generate sh -c "test upstream.go -nt $GOFILE && exit 0; mockgen -destination=./upstream.go -package=mocks github.com/gaojianshuai/jiaoyisuoapp/internal/domain/usecases Upstream"
//go:generate sh -c "test store.go -nt $GOFILE && exit 0; mockgen -destination=./store.go -package=mocks github.com/gaojianshuai/jiaoyisuoapp/internal/domain/usecases KVStore,RecordStore"
//go:generate sh -c "test quotes.go -nt $GOFILE && exit 0; mockgen -destination=./quotes.go -package=mocks github.com/gaojianshuai/jiaoyisuoapp/internal/domain/usecases QuoteSource"
package mocks
