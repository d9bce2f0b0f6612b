package services

// GraphQL documents for the Storefront API. Fragments keep the cart and
// product field selections identical across every operation so the
// reshape code only has to understand one shape of each.

const cartFragment = `
fragment cartFields on Cart {
  id
  checkoutUrl
  totalQuantity
  cost {
    subtotalAmount { amount currencyCode }
    totalAmount { amount currencyCode }
  }
  lines(first: 100) {
    edges {
      node {
        id
        quantity
        cost { totalAmount { amount currencyCode } }
        merchandise {
          ... on ProductVariant {
            id
            title
            price { amount currencyCode }
            selectedOptions { name value }
            image { url altText }
            product { title handle }
          }
        }
      }
    }
  }
}`

const productFragment = `
fragment productFields on Product {
  id
  handle
  title
  description
  images(first: 10) {
    edges { node { url altText } }
  }
  variants(first: 50) {
    edges {
      node {
        id
        title
        availableForSale
        price { amount currencyCode }
        selectedOptions { name value }
      }
    }
  }
  priceRange {
    minVariantPrice { amount currencyCode }
    maxVariantPrice { amount currencyCode }
  }
}`

const getProductsQuery = `
query getProducts($first: Int!, $after: String) {
  products(first: $first, after: $after, sortKey: CREATED_AT, reverse: true) {
    edges { node { ...productFields } }
    pageInfo { hasNextPage endCursor }
  }
}` + productFragment

const getProductByHandleQuery = `
query getProductByHandle($handle: String!) {
  product(handle: $handle) {
    ...productFields
  }
}` + productFragment

const getCartQuery = `
query getCart($cartId: ID!) {
  cart(id: $cartId) {
    ...cartFields
  }
}` + cartFragment

const cartCreateMutation = `
mutation cartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart { ...cartFields }
    userErrors { field message }
  }
}` + cartFragment

const cartLinesAddMutation = `
mutation cartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart { ...cartFields }
    userErrors { field message }
  }
}` + cartFragment

const cartLinesUpdateMutation = `
mutation cartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart { ...cartFields }
    userErrors { field message }
  }
}` + cartFragment

const cartLinesRemoveMutation = `
mutation cartLinesRemove($cartId: ID!, $lineIds: [ID!]!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart { ...cartFields }
    userErrors { field message }
  }
}` + cartFragment
