package thegraph

const poolDataQuery = `
query PoolData($poolId: [ID!]) {
  data: pools(where: { id_in: $poolId }, orderBy: totalValueLockedUSD, orderDirection: desc, subgraphError: allow) {
    id
    feeTier
    liquidity
    sqrtPrice
    tick
    token0 { id symbol name decimals derivedETH }
    token1 { id symbol name decimals derivedETH }
    token0Price
    token1Price
    volumeUSD
    volumeToken0
    volumeToken1
    txCount
    totalValueLockedToken0
    totalValueLockedToken1
    totalValueLockedUSD
  }
  bundles(where: { id: "1" }) {
    ethPriceUSD
  }
}`

const poolDayDataQuery = `
query PoolDayData($poolAddress: String!, $startTime: Int!, $endTime: Int!) {
  poolDayDatas(
    where: { pool: $poolAddress, date_gte: $startTime, date_lte: $endTime }
    orderBy: date
    orderDirection: asc
    first: 1000
  ) {
    id
    date
    volumeUSD
    tvlUSD
    feesUSD
  }
}`

const poolHourDataQuery = `
query PoolHourData($poolAddress: String!, $startTime: Int!, $endTime: Int!) {
  poolHourDatas(
    where: { pool: $poolAddress, periodStartUnix_gte: $startTime, periodStartUnix_lte: $endTime }
    orderBy: periodStartUnix
    orderDirection: asc
    first: 1000
  ) {
    id
    periodStartUnix
    volumeUSD
    tvlUSD
  }
}`

const poolHistoricalDataQuery = `
query PoolHistoricalData($poolId: ID!, $date: Int!) {
  poolDayDatas(
    first: 1
    where: { pool: $poolId, date: $date }
    orderBy: date
    orderDirection: desc
  ) {
    date
    volumeUSD
    tvlUSD
    feesUSD
  }
}`
