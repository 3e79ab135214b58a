package uniswapapi

const tokenQuery = `
query Token($chain: Chain!, $address: String = null) {
  token(chain: $chain, address: $address) {
    id
    address
    chain
    decimals
    name
    symbol
    standard
    project {
      id
      logoUrl
    }
    market(currency: USD) {
      id
      totalValueLocked { id value currency }
      price { id value currency }
      volume24H: volume(duration: DAY) { id value currency }
      priceHigh52W: priceHighLow(duration: YEAR, highLow: HIGH) { id value }
      priceLow52W: priceHighLow(duration: YEAR, highLow: LOW) { id value }
    }
  }
}`

const tokenPriceQuery = `
query TokenPrice($chain: Chain!, $address: String = null, $duration: HistoryDuration!) {
  token(chain: $chain, address: $address) {
    id
    address
    chain
    market(currency: USD) {
      id
      price { id value }
      priceHistory(duration: $duration) { id timestamp value }
    }
  }
}`

const activityQuery = `
query Activity($account: String!, $pageSize: Int) {
  portfolios(ownerAddresses: [$account]) {
    id
    assetActivities(pageSize: $pageSize, page: 1) {
      id
      timestamp
      chain
      details {
        ... on TransactionDetails {
          id
          type
          hash
          from
          to
          nonce
          status
          assetChanges {
            ... on TokenTransfer {
              id
              direction
              quantity
              asset { id address chain symbol name decimals project { logoUrl } }
            }
          }
        }
      }
    }
  }
}`
