package taiko

const topTokensQuery = `
  query TaikoTopTokens($orderBy: String!, $orderDirection: String!) {
    tokens(
      first: 100
      orderBy: $orderBy
      orderDirection: $orderDirection
    ) {
      id
      symbol
      name
      decimals
      volumeUSD
      totalValueLockedUSD
      feesUSD
      txCount
      derivedETH
    }
    bundle(id: "1") {
      ethPriceUSD
    }
  }
`

// Served by the pool subgraph; the token subgraph has no dated day data.
const topTokensDayDataQuery = `
  query TaikoTopTokensDayData($tokenIds: [String!]!, $startDate: Int!) {
    tokenDayDatas(
      where: { token_in: $tokenIds, date_gte: $startDate }
      orderBy: date
      orderDirection: desc
      first: 200
    ) {
      id
      date
      token {
        id
      }
      priceUSD
    }
  }
`

const tokenQuery = `
  query TaikoToken($tokenId: ID!) {
    token(id: $tokenId) {
      id
      symbol
      name
      decimals
      volumeUSD
      totalValueLockedUSD
      feesUSD
      txCount
      derivedETH
    }
    bundle(id: "1") {
      ethPriceUSD
    }
  }
`

const tokenHourDataQuery = `
  query TaikoTokenHourData($tokenAddress: Bytes!, $startTime: Int!) {
    tokenHourDatas(
      where: { token: $tokenAddress, periodStartUnix_gte: $startTime }
      orderBy: periodStartUnix
      orderDirection: asc
      first: 1000
    ) {
      periodStartUnix
      priceUSD
      open
      high
      low
      close
      volumeUSD
    }
  }
`

const tokenDayDataQuery = `
  query TaikoTokenDayData($tokenAddress: Bytes!, $startDate: Int!) {
    tokenDayDatas(
      where: { token: $tokenAddress, date_gte: $startDate }
      orderBy: date
      orderDirection: asc
      first: 1000
    ) {
      date
      priceUSD
      volumeUSD
      open
      high
      low
      close
    }
  }
`

const activityFields = `
      id
      timestamp
      amount0
      amount1
      amountUSD
      pool {
        id
        token0 {
          id
          symbol
          name
          decimals
        }
        token1 {
          id
          symbol
          name
          decimals
        }
      }
      transaction {
        id
        blockNumber
        timestamp
      }
`

const userActivityQuery = `
  query TaikoUserActivity($account: Bytes!, $first: Int = 100) {
    swaps(first: $first, orderBy: timestamp, orderDirection: desc, where: { origin: $account }) {
      sender
      origin` + activityFields + `    }
    mints(first: $first, orderBy: timestamp, orderDirection: desc, where: { origin: $account }) {
      sender
      origin` + activityFields + `    }
    burns(first: $first, orderBy: timestamp, orderDirection: desc, where: { origin: $account }) {
      owner
      origin` + activityFields + `    }
    collects(first: $first, orderBy: timestamp, orderDirection: desc, where: { owner: $account }) {
      owner` + activityFields + `    }
  }
`

const tokenPricesQuery = `
  query TaikoTokenPrices($tokenAddresses: [Bytes!]!) {
    tokens(where: { id_in: $tokenAddresses }) {
      id
      symbol
      name
      decimals
      derivedETH
    }
    bundle(id: "1") {
      ethPriceUSD
    }
  }
`

const userPositionsQuery = `
  query TaikoUserPositions($account: Bytes!) {
    positions(where: { owner: $account, liquidity_gt: "0" }) {
      id
      owner
      liquidity
      token0 {
        id
        symbol
        name
        decimals
        derivedETH
      }
      token1 {
        id
        symbol
        name
        decimals
        derivedETH
      }
      pool {
        id
        token0Price
        token1Price
        totalValueLockedUSD
        totalValueLockedToken0
        totalValueLockedToken1
      }
      depositedToken0
      depositedToken1
      withdrawnToken0
      withdrawnToken1
      collectedFeesToken0
      collectedFeesToken1
    }
  }
`
